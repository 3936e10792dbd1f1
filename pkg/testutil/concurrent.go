package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"campus/pkg/platform/sentinel"
)

// ConcurrentResult counts how concurrent store calls ended.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent starts n goroutines, releases them together and sorts each
// result by store sentinel.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		res   ConcurrentResult
		ready sync.WaitGroup
		done  sync.WaitGroup
	)
	start := make(chan struct{})

	ready.Add(n)
	done.Add(n)
	for i := range n {
		go func() {
			defer done.Done()
			ready.Done()
			<-start

			err := fn(i)
			switch {
			case err == nil:
				atomic.AddInt32(&res.Successes, 1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				atomic.AddInt32(&res.Conflicts, 1)
			case errors.Is(err, sentinel.ErrNotFound):
				atomic.AddInt32(&res.NotFounds, 1)
			default:
				atomic.AddInt32(&res.Errors, 1)
			}
		}()
	}
	ready.Wait()
	close(start)
	done.Wait()

	return &res
}
