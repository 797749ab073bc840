// Package archive lists archived events, parameters and mission database
// objects, filtered by a query and paginated with opaque cursors.
package archive

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/theplant/listing"
	"github.com/theplant/listing/cursor"
	"github.com/theplant/listing/filter"
	"github.com/theplant/listing/interval"
)

type Options struct {
	Logger  *slog.Logger
	Metrics *listing.Metrics
	Events  EventStore
	// LegacyTypeSearch is passed to EventSchema.
	LegacyTypeSearch bool
	Parameters       []ParameterInfo
	Objects          []NamedObject
	Limits           *filter.Limits
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithMetrics(metrics *listing.Metrics) Option {
	return func(opts *Options) {
		opts.Metrics = metrics
	}
}

func WithEventStore(store EventStore) Option {
	return func(opts *Options) {
		opts.Events = store
	}
}

func WithLegacyTypeSearch(legacy bool) Option {
	return func(opts *Options) {
		opts.LegacyTypeSearch = legacy
	}
}

func WithParameters(parameters []ParameterInfo) Option {
	return func(opts *Options) {
		opts.Parameters = parameters
	}
}

func WithObjects(objects []NamedObject) Option {
	return func(opts *Options) {
		opts.Objects = objects
	}
}

// WithLimits bounds the complexity of the queries the service accepts.
func WithLimits(limits *filter.Limits) Option {
	return func(opts *Options) {
		opts.Limits = limits
	}
}

// Service serves the archive listings. It is safe for concurrent use.
type Service struct {
	cfg  *listing.Config
	opts Options

	eventSchema     *filter.Schema[Event, []string]
	parameterSchema *filter.Schema[ParameterInfo, []string]
	objectSchema    *filter.Schema[NamedObject, []string]
}

func NewService(cfg *listing.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config must be set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(&s.opts)
	}
	s.eventSchema = EventSchema(EventSchemaOptions{
		LegacyTypeSearch: s.opts.LegacyTypeSearch,
		Limits:           s.opts.Limits,
	})
	s.parameterSchema = ParameterSchema(s.opts.Limits)
	s.objectSchema = NamedObjectSchema(s.opts.Limits)
	return s, nil
}

func hooksFor[T any](s *Service, name string) ([]func(next listing.Paginator[T]) listing.Paginator[T], error) {
	hooks, err := cursor.Hooks[T](s.cfg)
	if err != nil {
		return nil, err
	}
	if s.opts.Metrics != nil {
		hooks = append(hooks, listing.WithMetrics[T](s.opts.Metrics, name))
	}
	if s.opts.Logger != nil {
		hooks = append(hooks, listing.WithLogger[T](s.opts.Logger, name))
	}
	return hooks, nil
}

// Page selects a page of a listing. First falls back to the configured
// default limit.
type Page struct {
	First *int
	After *string
	Pos   *int
}

func paginate[T any](ctx context.Context, s *Service, name string, adapter listing.ApplyCursorsFunc[T], page Page) (*listing.Connection[T], error) {
	hooks, err := hooksFor[T](s, name)
	if err != nil {
		return nil, err
	}
	return listing.New(adapter, hooks...).Paginate(ctx, &listing.PaginateRequest[T]{
		First: page.First,
		After: page.After,
		Pos:   page.Pos,
	})
}

type ListEventsRequest struct {
	Page
	Query string
	// Start is inclusive, Stop exclusive.
	Start, Stop *int64
	// Order is "asc" or "desc", the default.
	Order string
	// Severity is the minimum severity, INFO by default.
	Severity string
	Sources  []string
}

// ListEvents lists events in generation time order, newest first unless
// ascending order is asked for. No total count is reported.
func (s *Service) ListEvents(ctx context.Context, req *ListEventsRequest) (*listing.Connection[Event], error) {
	if s.opts.Events == nil {
		return nil, errors.New("event archive is not configured")
	}

	var descending bool
	switch strings.ToLower(req.Order) {
	case "", "desc":
		descending = true
	case "asc":
	default:
		return nil, errors.Errorf("unsupported order %q", req.Order)
	}

	severities, err := SeveritiesAtLeast(req.Severity)
	if err != nil {
		return nil, err
	}

	iv := interval.New()
	if req.Start != nil {
		iv = iv.SetStart(*req.Start, true)
	}
	if req.Stop != nil {
		iv = iv.SetStop(*req.Stop, false)
	}

	f, err := s.eventSchema.Parse(req.Query)
	if err != nil {
		return nil, err
	}

	opts := []cursor.TimeAdapterOption[Event]{cursor.WithDescending[Event](descending)}
	if !f.Query().IsEmpty() {
		opts = append(opts, cursor.WithMatch(f.Matches))
	}
	finder := s.opts.Events.Finder(EventConditions{
		Interval:   &iv,
		Severities: severities,
		Sources:    req.Sources,
	})
	return paginate(ctx, s, "events", cursor.NewTimeAdapter(finder, EventKey, opts...), req.Page)
}

type ListRequest struct {
	Page
	Query string
}

// ListParameters lists parameters by name. The total count is the number of
// parameters matching the query.
func (s *Service) ListParameters(ctx context.Context, req *ListRequest) (*listing.Connection[ParameterInfo], error) {
	f, err := s.parameterSchema.Parse(req.Query)
	if err != nil {
		return nil, err
	}
	adapter := cursor.NewNameAdapter(s.opts.Parameters, ParameterKey, matchFunc(f))
	return paginate(ctx, s, "parameters", adapter, req.Page)
}

// ListObjects lists mission database objects, containers first, then by
// name.
func (s *Service) ListObjects(ctx context.Context, req *ListRequest) (*listing.Connection[NamedObject], error) {
	f, err := s.objectSchema.Parse(req.Query)
	if err != nil {
		return nil, err
	}
	adapter := cursor.NewNameAdapter(s.opts.Objects, NamedObjectKey, matchFunc(f))
	return paginate(ctx, s, "objects", adapter, req.Page)
}

func matchFunc[T, P any](f *filter.Filter[T, P]) func(T) bool {
	if f.Query().IsEmpty() {
		return nil
	}
	return f.Func()
}
