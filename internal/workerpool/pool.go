// Package workerpool provides the bounded-concurrency worker pool that
// backs top-level block parallelism in the pipeline (via Submit). Map runs
// an indexed batch of jobs across the same pool; the pipeline's per-shard
// stages do not use it and run inside each block's job.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// Pool runs jobs across a fixed number of worker goroutines. Unlike a
// one-off goroutine-per-job fan-out, Pool caps steady-state concurrency so
// that encoding or decoding a large archive does not spawn one goroutine per
// shard across the whole file.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// New starts a pool with size workers. size <= 0 means runtime.NumCPU(),
// matching the HELIX_THREADS override described in the external interface.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{tasks: make(chan func())}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.tasks {
				job()
			}
		}()
	}
	return p
}

// Close stops accepting new jobs and waits for in-flight ones to drain.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}

// Submit hands a single job to the pool, blocking until a worker is free to
// accept it. Unlike Map, the caller tracks completion itself (e.g. with its
// own sync.WaitGroup) — this is the primitive the block-level pipeline uses
// to stream an unbounded sequence of blocks through a fixed-size pool
// without knowing the total block count up front.
func (p *Pool) Submit(job func()) {
	p.tasks <- job
}

// Map runs fn(i) for i in [0, n) across the pool and waits for all of them,
// returning the first non-nil error encountered. It is cooperative: once
// ctx is cancelled, jobs that have not yet started are skipped, but jobs
// already running are allowed to finish (spec: cancellation is cooperative
// at block boundaries, no partial blocks are emitted).
func (p *Pool) Map(ctx context.Context, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		submit := func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				mu.Lock()
				if firstErr == nil {
					firstErr = ctx.Err()
				}
				mu.Unlock()
				return
			default:
			}
			if err := fn(i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}
		select {
		case p.tasks <- submit:
		case <-ctx.Done():
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	return firstErr
}
