package cursor

import (
	"cmp"
	"context"
	"slices"

	"github.com/pkg/errors"

	"github.com/theplant/listing"
)

// TimeCursor resumes a time-ordered listing strictly after an instant.
// Seq breaks ties between items of the same instant when set.
type TimeCursor struct {
	Time int64  `json:"time"`
	Seq  *int64 `json:"seq,omitempty"`
}

func EncodeTime(c TimeCursor) (string, error) {
	return encode(c)
}

// DecodeTime fails with *InvalidCursorError if text is not an encoded TimeCursor.
func DecodeTime(text string) (TimeCursor, error) {
	var c TimeCursor
	if err := decode(text, &c, "time"); err != nil {
		return TimeCursor{}, err
	}
	return c, nil
}

// Compare orders by time, then by sequence when both cursors carry one.
func (c TimeCursor) Compare(o TimeCursor) int {
	if r := cmp.Compare(c.Time, o.Time); r != 0 || c.Seq == nil || o.Seq == nil {
		return r
	}
	return cmp.Compare(*c.Seq, *o.Seq)
}

// After reports whether c comes strictly after o in the given direction.
func (c TimeCursor) After(o TimeCursor, descending bool) bool {
	if descending {
		return c.Compare(o) < 0
	}
	return c.Compare(o) > 0
}

// TimeFinder fetches up to limit items in time order, strictly after the
// cursor in that order when one is given.
type TimeFinder[T any] interface {
	Find(ctx context.Context, after *TimeCursor, descending bool, limit int) ([]T, error)
}

type TimeFinderFunc[T any] func(ctx context.Context, after *TimeCursor, descending bool, limit int) ([]T, error)

func (f TimeFinderFunc[T]) Find(ctx context.Context, after *TimeCursor, descending bool, limit int) ([]T, error) {
	return f(ctx, after, descending, limit)
}

// NewSliceTimeFinder serves an in-memory set of items.
func NewSliceTimeFinder[T any](items []T, key func(T) TimeCursor) TimeFinder[T] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return key(a).Compare(key(b))
	})
	return TimeFinderFunc[T](func(_ context.Context, after *TimeCursor, descending bool, limit int) ([]T, error) {
		result := make([]T, 0, max(limit, 0))
		for i := range sorted {
			if len(result) >= limit {
				break
			}
			item := sorted[i]
			if descending {
				item = sorted[len(sorted)-1-i]
			}
			if after != nil && !key(item).After(*after, descending) {
				continue
			}
			result = append(result, item)
		}
		return result, nil
	})
}

type TimeAdapterOptions[T any] struct {
	Descending bool
	Match      func(T) bool
	// BatchSize is the number of items fetched per round trip to the finder.
	// Zero fetches as many items as the page still needs.
	BatchSize int
}

type TimeAdapterOption[T any] func(*TimeAdapterOptions[T])

func WithDescending[T any](descending bool) TimeAdapterOption[T] {
	return func(opts *TimeAdapterOptions[T]) {
		opts.Descending = descending
	}
}

// WithMatch lists only the items accepted by match.
func WithMatch[T any](match func(T) bool) TimeAdapterOption[T] {
	return func(opts *TimeAdapterOptions[T]) {
		opts.Match = match
	}
}

func WithBatchSize[T any](size int) TimeAdapterOption[T] {
	return func(opts *TimeAdapterOptions[T]) {
		opts.BatchSize = size
	}
}

// NewTimeAdapter lists the items of finder in time order. Items rejected by
// the match option are skipped, and the finder is queried again until the
// page is full or the finder is exhausted.
//
// key must identify items uniquely in the listing order, otherwise items
// sharing a key with the last item of a batch may be skipped.
func NewTimeAdapter[T any](finder TimeFinder[T], key func(T) TimeCursor, opts ...TimeAdapterOption[T]) listing.ApplyCursorsFunc[T] {
	if finder == nil {
		panic("finder must be set")
	}
	if key == nil {
		panic("key must be set")
	}
	options := &TimeAdapterOptions[T]{}
	for _, opt := range opts {
		opt(options)
	}

	return func(ctx context.Context, req *listing.ApplyCursorsRequest) (*listing.ApplyCursorsResponse[T], error) {
		var after *TimeCursor
		if req.After != nil {
			c, err := DecodeTime(*req.After)
			if err != nil {
				return nil, err
			}
			after = &c
		}

		skip := req.Pos
		nodes := make([]T, 0, max(req.Limit, 0))
		for len(nodes) < req.Limit {
			batchSize := options.BatchSize
			if batchSize <= 0 {
				batchSize = req.Limit - len(nodes) + skip
			}
			batch, err := finder.Find(ctx, after, options.Descending, batchSize)
			if err != nil {
				return nil, errors.Wrap(err, "failed to find items")
			}
			for _, item := range batch {
				if options.Match != nil && !options.Match(item) {
					continue
				}
				if skip > 0 {
					skip--
					continue
				}
				nodes = append(nodes, item)
				if len(nodes) == req.Limit {
					break
				}
			}
			if len(batch) < batchSize {
				break
			}
			last := key(batch[len(batch)-1])
			after = &last
		}

		edges := make([]*listing.LazyEdge[T], len(nodes))
		for i, node := range nodes {
			edges[i] = &listing.LazyEdge[T]{
				Node: node,
				Cursor: func(_ context.Context) (string, error) {
					return EncodeTime(key(node))
				},
			}
		}
		return &listing.ApplyCursorsResponse[T]{LazyEdges: edges}, nil
	}
}
