package lisp

import (
	"fmt"
	"time"
)

type evalResult struct {
	value any
	err   error
}

// runWithTimeout runs fn on its own goroutine and waits at most timeout for
// it. Panics inside fn become errors.
//
// On timeout, the goroutine may still be running; its result is discarded
// when it eventually completes.
func runWithTimeout(timeout time.Duration, fn func() (any, error)) (any, error) {
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		v, err := fn()
		ch <- evalResult{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-timer.C:
		return nil, fmt.Errorf("after %s: %w", timeout, ErrTimeout)
	}
}
