package listing

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts served pages per listing.
type Metrics struct {
	Pages    *prometheus.CounterVec
	Items    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the listing collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Pages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listing_pages_total",
				Help: "Total number of listing pages served",
			},
			[]string{"listing", "status"},
		),
		Items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listing_items_total",
				Help: "Total number of items returned by listings",
			},
			[]string{"listing"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "listing_page_duration_seconds",
				Help:    "Listing page latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"listing"},
		),
	}
}

// WithMetrics records every page served by the paginator under name.
func WithMetrics[T any](m *Metrics, name string) func(next Paginator[T]) Paginator[T] {
	return func(next Paginator[T]) Paginator[T] {
		return PaginatorFunc[T](func(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error) {
			start := time.Now()
			conn, err := next.Paginate(ctx, req)
			m.Duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			if err != nil {
				m.Pages.WithLabelValues(name, "error").Inc()
				return nil, err
			}
			m.Pages.WithLabelValues(name, "ok").Inc()
			m.Items.WithLabelValues(name).Add(float64(pageSize(conn)))
			return conn, nil
		})
	}
}

func pageSize[T any](conn *Connection[T]) int {
	if len(conn.Nodes) > 0 {
		return len(conn.Nodes)
	}
	return len(conn.Edges)
}
