// Package parallel provides small helpers for fanning work out over
// goroutines, used by the concurrent gradient evaluation.
package parallel

import "sync"

// ErrorCollector keeps the first error reported by a group of goroutines.
// It is safe for concurrent use.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	for i := range parts {
//	    wg.Add(1)
//	    go func() {
//	        defer wg.Done()
//	        ec.SetError(evaluate(i))
//	    }()
//	}
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records err if no error has been recorded yet. Nil is ignored.
func (c *ErrorCollector) SetError(err error) {
	if err != nil {
		c.once.Do(func() {
			c.err = err
		})
	}
}

// Err returns the first recorded error, or nil. Call it after the
// goroutines have completed.
func (c *ErrorCollector) Err() error {
	return c.err
}

// Map evaluates fn for every index in [0, n) on its own goroutine and stores
// the results in a slice of length n. The first error wins; the results of
// the other indices are still written.
func Map[T any](n int, fn func(i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	var (
		ec ErrorCollector
		wg sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := fn(i)
			if err != nil {
				ec.SetError(err)
				return
			}
			out[i] = v
		}(i)
	}
	wg.Wait()
	return out, ec.Err()
}
