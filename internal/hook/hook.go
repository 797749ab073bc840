package hook

import "github.com/samber/lo"

// Chain composes hooks so that the first hook is the outermost one.
// Nil hooks are ignored. Returns nil if no hook remains.
func Chain[T any](hooks ...func(next T) T) func(next T) T {
	hooks = lo.Filter(hooks, func(h func(next T) T, _ int) bool {
		return h != nil
	})
	if len(hooks) == 0 {
		return nil
	}
	return func(next T) T {
		for i := len(hooks) - 1; i >= 0; i-- {
			next = hooks[i](next)
		}
		return next
	}
}

// Prepend places hooks in front of an existing (possibly nil) hook.
func Prepend[T any](existing func(next T) T, hooks ...func(next T) T) func(next T) T {
	all := make([]func(next T) T, 0, len(hooks)+1)
	all = append(all, hooks...)
	all = append(all, existing)
	return Chain(all...)
}
