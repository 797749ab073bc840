package listing

import (
	"context"

	"github.com/theplant/listing/internal/hook"
)

// EnsureLimits clamps first to maxLimit and substitutes defaultLimit when
// first is missing or negative.
func EnsureLimits[T any](defaultLimit, maxLimit int) func(next Paginator[T]) Paginator[T] {
	if defaultLimit < 0 {
		panic("defaultLimit cannot be negative")
	}
	if maxLimit < defaultLimit {
		panic("maxLimit must be greater than or equal to defaultLimit")
	}
	return func(next Paginator[T]) Paginator[T] {
		return PaginatorFunc[T](func(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error) {
			switch {
			case req.First == nil || *req.First < 0:
				req.First = &defaultLimit
			case *req.First > maxLimit:
				req.First = &maxLimit
			}
			return next.Paginate(ctx, req)
		})
	}
}

type ctxCursorHook struct{}

func CursorHookFromContext[T any](ctx context.Context) func(next ApplyCursorsFunc[T]) ApplyCursorsFunc[T] {
	hook, _ := ctx.Value(ctxCursorHook{}).(func(next ApplyCursorsFunc[T]) ApplyCursorsFunc[T])
	return hook
}

// PrependCursorHook wraps the cursor application of the paginator, e.g. to
// seal cursors before they leave the process.
func PrependCursorHook[T any](hooks ...func(next ApplyCursorsFunc[T]) ApplyCursorsFunc[T]) func(next Paginator[T]) Paginator[T] {
	return func(next Paginator[T]) Paginator[T] {
		return PaginatorFunc[T](func(ctx context.Context, req *PaginateRequest[T]) (*Connection[T], error) {
			if len(hooks) > 0 {
				cursorHook := CursorHookFromContext[T](ctx)
				cursorHook = hook.Prepend(cursorHook, hooks...)
				ctx = context.WithValue(ctx, ctxCursorHook{}, cursorHook)
			}
			return next.Paginate(ctx, req)
		})
	}
}
