package listing

import (
	"context"

	"github.com/pkg/errors"

	"github.com/theplant/listing/internal/hook"
)

// PaginateRequest asks for the First items following After, or following the
// first Pos items when no cursor is known yet.
type PaginateRequest[T any] struct {
	After *string `json:"after"`
	First *int    `json:"first"`
	Pos   *int    `json:"pos"`
}

type Edge[T any] struct {
	Node   T      `json:"node"`
	Cursor string `json:"cursor"`
}

type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

type Connection[T any] struct {
	Edges      []*Edge[T] `json:"edges,omitempty"`
	Nodes      []T        `json:"nodes,omitempty"`
	PageInfo   *PageInfo  `json:"pageInfo,omitempty"`
	TotalCount *int       `json:"totalCount,omitempty"`
}

type ApplyCursorsRequest struct {
	After *string
	Pos   int
	Limit int
}

type LazyEdge[T any] struct {
	Node   T
	Cursor func(ctx context.Context) (string, error)
}

type ApplyCursorsResponse[T any] struct {
	LazyEdges  []*LazyEdge[T]
	TotalCount *int
}

// ApplyCursorsFunc returns up to req.Limit items in listing order, starting
// strictly after req.After, or after skipping req.Pos items.
type ApplyCursorsFunc[T any] func(ctx context.Context, req *ApplyCursorsRequest) (*ApplyCursorsResponse[T], error)

// One extra item is requested to learn whether another page exists.
func paginate[T any](ctx context.Context, req *PaginateRequest[T], applyCursorsFunc ApplyCursorsFunc[T]) (*Connection[T], error) {
	if req.First == nil {
		return nil, errors.New("first must be set")
	}
	if *req.First < 0 {
		return nil, errors.New("first must be a non-negative integer")
	}
	var pos int
	if req.Pos != nil {
		if *req.Pos < 0 {
			return nil, errors.New("pos must be a non-negative integer")
		}
		if req.After != nil {
			return nil, errors.New("pos and after cannot be used together")
		}
		pos = *req.Pos
	}

	skip := GetSkip(ctx)
	if skip.All() {
		return &Connection[T]{}, nil
	}

	rsp, err := applyCursorsFunc(ctx, &ApplyCursorsRequest{
		After: req.After,
		Pos:   pos,
		Limit: *req.First + 1,
	})
	if err != nil {
		return nil, err
	}

	lazyEdges := rsp.LazyEdges

	processor := GetNodeProcessor[T](ctx)
	if processor != nil {
		for _, lazyEdge := range lazyEdges {
			node, err := processor(ctx, lazyEdge.Node)
			if err != nil {
				return nil, err
			}
			lazyEdge.Node = node
		}
	}

	var hasNextPage bool
	if len(lazyEdges) > *req.First {
		lazyEdges = lazyEdges[:*req.First]
		hasNextPage = true
	}
	// Whether anything precedes a cursor is not checked, its presence is enough.
	hasPreviousPage := req.After != nil || pos > 0

	// Cursors are resolved at most once, and only those that are returned.
	cursors := make([]*string, len(lazyEdges))
	cursorAt := func(i int) (*string, error) {
		if cursors[i] == nil {
			cursor, err := lazyEdges[i].Cursor(ctx)
			if err != nil {
				return nil, err
			}
			cursors[i] = &cursor
		}
		return cursors[i], nil
	}

	conn := &Connection[T]{}

	if !skip.Edges {
		conn.Edges = make([]*Edge[T], len(lazyEdges))
		for i, lazyEdge := range lazyEdges {
			cursor, err := cursorAt(i)
			if err != nil {
				return nil, err
			}
			conn.Edges[i] = &Edge[T]{Node: lazyEdge.Node, Cursor: *cursor}
		}
	}

	if !skip.Nodes {
		conn.Nodes = make([]T, len(lazyEdges))
		for i, lazyEdge := range lazyEdges {
			conn.Nodes[i] = lazyEdge.Node
		}
	}

	if !skip.TotalCount {
		conn.TotalCount = rsp.TotalCount
	}

	if !skip.PageInfo {
		conn.PageInfo = &PageInfo{
			HasNextPage:     hasNextPage,
			HasPreviousPage: hasPreviousPage,
		}
		if n := len(lazyEdges); n > 0 {
			if conn.PageInfo.StartCursor, err = cursorAt(0); err != nil {
				return nil, err
			}
			if conn.PageInfo.EndCursor, err = cursorAt(n - 1); err != nil {
				return nil, err
			}
		}
	}

	return conn, nil
}

type Paginator[T any] interface {
	Paginate(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error)
}

type PaginatorFunc[T any] func(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error)

func (f PaginatorFunc[T]) Paginate(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error) {
	return f(ctx, req)
}

func New[T any](applyCursorsFunc ApplyCursorsFunc[T], hooks ...func(next Paginator[T]) Paginator[T]) Paginator[T] {
	if applyCursorsFunc == nil {
		panic("applyCursorsFunc must be set")
	}

	var p Paginator[T] = PaginatorFunc[T](func(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error) {
		applyCursors := applyCursorsFunc
		cursorHook := CursorHookFromContext[T](ctx)
		if cursorHook != nil {
			applyCursors = cursorHook(applyCursors)
		}
		return paginate(ctx, req, applyCursors)
	})

	hook := hook.Chain(hooks...)
	if hook != nil {
		p = hook(p)
	}
	return p
}
