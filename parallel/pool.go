// Package parallel runs independent file tasks on a fixed number of
// workers and counts their outcomes.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	// Task is one unit of work. A non-nil error counts as a failure.
	Task       func() error
	WorkerFunc func(Task)
	WaitFunc   func(done bool) Stats
	CancelFunc func()
)

// Stats counts the outcome of the tasks run so far.
type Stats struct {
	Processed uint64
	Failed    uint64
}

func (s Stats) Total() uint64 {
	return s.Processed + s.Failed
}

type Pool struct {
	wg        sync.WaitGroup
	processed atomic.Uint64
	failed    atomic.Uint64

	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

// Start returns a pool of numWorkers workers, or one per CPU when numWorkers
// is below 1. With a single worker tasks run synchronously in Do.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{}
	pool.Do = func(t Task) {
		pool.run(t)
	}
	pool.Wait = func(bool) Stats {
		return pool.stats()
	}
	pool.Cancel = func() {}

	if numWorkers > 1 {
		workChan := make(chan Task, numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for t := range workChan {
					pool.run(t)
				}
			})
		}

		pool.Do = func(t Task) {
			workChan <- t
		}

		// Wait(false) only reports the current counts; Wait(true) closes the
		// pool and blocks until every queued task finished.
		pool.Wait = func(done bool) Stats {
			if done {
				pool.Cancel()
				pool.wg.Wait()
			}
			return pool.stats()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

func (p *Pool) run(t Task) {
	if err := t(); err != nil {
		p.failed.Add(1)
		return
	}
	p.processed.Add(1)
}

func (p *Pool) stats() Stats {
	return Stats{Processed: p.processed.Load(), Failed: p.failed.Load()}
}
