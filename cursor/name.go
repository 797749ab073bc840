package cursor

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/theplant/listing"
)

// NameCursor resumes a listing ordered by CompareNames after the named item.
type NameCursor struct {
	Name      string `json:"name"`
	Container bool   `json:"container,omitempty"`
}

func EncodeName(c NameCursor) (string, error) {
	return encode(c)
}

// DecodeName fails with *InvalidCursorError if text is not an encoded NameCursor.
func DecodeName(text string) (NameCursor, error) {
	var c NameCursor
	if err := decode(text, &c, "name"); err != nil {
		return NameCursor{}, err
	}
	return c, nil
}

// CompareNames orders containers before other items, then by name ignoring
// case. Names equal but for case are ordered by their exact bytes.
func CompareNames(a, b NameCursor) int {
	if a.Container != b.Container {
		if a.Container {
			return -1
		}
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// NewNameAdapter lists an in-memory set of items in CompareNames order.
// Only items accepted by match are listed, a nil match accepts all.
// The total count is the number of matching items.
func NewNameAdapter[T any](items []T, key func(T) NameCursor, match func(T) bool) listing.ApplyCursorsFunc[T] {
	if key == nil {
		panic("key must be set")
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return CompareNames(key(a), key(b))
	})

	return func(ctx context.Context, req *listing.ApplyCursorsRequest) (*listing.ApplyCursorsResponse[T], error) {
		matched := sorted
		if match != nil {
			matched = lo.Filter(sorted, func(item T, _ int) bool {
				return match(item)
			})
		}

		var totalCount *int
		if !listing.GetSkip(ctx).TotalCount {
			totalCount = lo.ToPtr(len(matched))
		}

		var rest []T
		if req.After != nil {
			after, err := DecodeName(*req.After)
			if err != nil {
				return nil, err
			}
			i, _ := slices.BinarySearchFunc(matched, after, func(item T, target NameCursor) int {
				// Land on the first item strictly after the cursor
				if CompareNames(key(item), target) <= 0 {
					return -1
				}
				return 1
			})
			rest = matched[i:]
		} else {
			rest = matched[min(req.Pos, len(matched)):]
		}
		rest = rest[:min(max(req.Limit, 0), len(rest))]

		edges := make([]*listing.LazyEdge[T], len(rest))
		for i, item := range rest {
			edges[i] = &listing.LazyEdge[T]{
				Node: item,
				Cursor: func(_ context.Context) (string, error) {
					return EncodeName(key(item))
				},
			}
		}
		return &listing.ApplyCursorsResponse[T]{
			LazyEdges:  edges,
			TotalCount: totalCount,
		}, nil
	}
}
