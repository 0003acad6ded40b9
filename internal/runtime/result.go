package runtime

import (
	"context"
	"sync"
)

// Result settles once with the outcome of a navigation request. true means
// the navigation committed; false means it was denied, ignored or superseded.
type Result struct {
	done chan struct{}
	once sync.Once
	ok   bool
	err  error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

func (r *Result) resolve(ok bool) {
	r.once.Do(func() {
		r.ok = ok
		close(r.done)
	})
}

func (r *Result) reject(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Done is closed once the result settles.
func (r *Result) Done() <-chan struct{} { return r.done }

// Wait blocks until the result settles or ctx ends.
func (r *Result) Wait(ctx context.Context) (bool, error) {
	select {
	case <-r.done:
		return r.ok, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
