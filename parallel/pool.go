// Package parallel fans work out over a fixed set of goroutines. It backs
// both the per-file batch loop and the per-row raster passes.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

type Pool struct {
	wg     sync.WaitGroup
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

// Start returns a pool of numWorkers goroutines, GOMAXPROCS when numWorkers < 1.
// A single worker pool runs every job inline on the caller's goroutine.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

var rowHelpers atomic.Pointer[chan struct{}]

func init() {
	SetRowWorkers(0)
}

// SetRowWorkers sets how many goroutines one Rows call may use, counting the
// caller, GOMAXPROCS when n < 1. Helpers come from a budget shared by every
// concurrent Rows call, so running several passes at once never adds helpers.
func SetRowWorkers(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	slots := make(chan struct{}, n-1)
	rowHelpers.Store(&slots)
}

// Rows calls fn once for every row in [0, height) and returns when all rows
// are done. The caller works through the rows itself, joined by whatever
// helpers the shared budget has free. Rows may complete in any order.
func Rows(height int, fn func(y int)) {
	if height <= 0 {
		return
	}

	var next atomic.Int64
	work := func() {
		for {
			y := int(next.Add(1)) - 1
			if y >= height {
				return
			}
			fn(y)
		}
	}

	slots := *rowHelpers.Load()
	var wg sync.WaitGroup
spawn:
	for range height - 1 {
		select {
		case slots <- struct{}{}:
			wg.Go(func() {
				defer func() { <-slots }()
				work()
			})
		default:
			break spawn
		}
	}

	work()
	wg.Wait()
}
