package listing

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// NewLogger builds a logger writing to w. format is "json" or "text",
// level one of DEBUG, INFO, WARN, ERROR.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithLogger logs every page at debug level and failures at warn level.
func WithLogger[T any](logger *slog.Logger, name string) func(next Paginator[T]) Paginator[T] {
	if logger == nil {
		panic("logger must be set")
	}
	logger = logger.With("listing", name)
	return func(next Paginator[T]) Paginator[T] {
		return PaginatorFunc[T](func(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error) {
			attrs := []any{
				"first", lo.FromPtr(req.First),
				"after", req.After != nil,
				"pos", lo.FromPtr(req.Pos),
			}
			conn, err := next.Paginate(ctx, req)
			if err != nil {
				logger.WarnContext(ctx, "listing failed", append(attrs, "error", err)...)
				return nil, err
			}
			if conn.PageInfo != nil {
				attrs = append(attrs, "hasNextPage", conn.PageInfo.HasNextPage)
			}
			logger.DebugContext(ctx, "listing page", append(attrs, "items", pageSize(conn))...)
			return conn, nil
		})
	}
}
