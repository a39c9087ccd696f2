package sf

import "golang.org/x/sync/singleflight"

// Group is a typed wrapper around singleflight.Group. The zero value is
// ready to use.
type Group[T any] struct {
	group singleflight.Group
}

// Do runs fn unless a call for key is already in flight. shared reports
// whether the result was handed to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (out T, shared bool, err error) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if v != nil {
		out = v.(T)
	}
	return out, shared, err
}

// Forget makes the next Do for key run fn even if a call is in flight.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}

// Result is what DoChan delivers.
type Result[T any] struct {
	Val    T
	Err    error
	Shared bool
}

// DoChan is like Do but returns a channel that receives the result when it
// is ready, so callers can stop waiting without cancelling the shared call.
func (g *Group[T]) DoChan(key string, fn func() (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn()
	})
	go func() {
		r := <-ch
		res := Result[T]{Err: r.Err, Shared: r.Shared}
		if r.Val != nil {
			res.Val = r.Val.(T)
		}
		out <- res
	}()
	return out
}
