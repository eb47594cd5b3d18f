// Package queue provides the bounded, memory-aware buffering used between
// the archive reader and the block worker pool.
package queue

import (
	"context"
	"sync"
)

// Chunk is a unit of work carrying its accounted byte size. Block bytes read
// from the archive's input file are wrapped in a Chunk before entering the
// inflight queue.
type Chunk struct {
	Seq   uint64
	Bytes []byte
}

// InflightQueue is a byte-accounted, bounded producer/consumer queue. Push
// blocks once the sum of outstanding chunk sizes reaches Limit, giving the
// reader backpressure against slow block workers so that peak RAM stays flat
// regardless of input size (spec: max_inflight_bytes).
//
// Admission is already bounded by bytes, not item count, so the backing
// store needs no fixed capacity of its own: it is a plain append-only slice
// with a head index, compacted back to the front once the drained prefix
// grows past half the slice. That is simpler than a capacity-tracking
// circular buffer and just as cheap in the common case, since Pop always
// drains from the front in FIFO order.
type InflightQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	buf      []Chunk
	head     int
	inflight int64
	limit    int64
	closed   bool
}

// NewInflightQueue creates a queue that admits at most limitBytes of
// outstanding chunk payload at a time.
func NewInflightQueue(limitBytes int64) *InflightQueue {
	iq := &InflightQueue{limit: limitBytes}
	iq.notEmpty = sync.NewCond(&iq.mu)
	iq.notFull = sync.NewCond(&iq.mu)
	return iq
}

// Push enqueues a chunk, blocking until there is room under the byte limit
// or ctx is cancelled. The first chunk is always admitted even if it alone
// exceeds the limit, so a single oversized block cannot deadlock the reader.
func (iq *InflightQueue) Push(ctx context.Context, c Chunk) error {
	iq.mu.Lock()
	defer iq.mu.Unlock()

	for iq.inflight > 0 && iq.inflight+int64(len(c.Bytes)) > iq.limit {
		if err := iq.waitLocked(ctx, iq.notFull); err != nil {
			return err
		}
	}
	if iq.closed {
		return context.Canceled
	}
	iq.buf = append(iq.buf, c)
	iq.inflight += int64(len(c.Bytes))
	iq.notEmpty.Signal()
	return nil
}

// Pop dequeues the next chunk, blocking until one is available, the queue is
// closed, or ctx is cancelled.
func (iq *InflightQueue) Pop(ctx context.Context) (Chunk, bool) {
	iq.mu.Lock()
	defer iq.mu.Unlock()

	for iq.head == len(iq.buf) && !iq.closed {
		if err := iq.waitLocked(ctx, iq.notEmpty); err != nil {
			return Chunk{}, false
		}
	}
	if iq.head == len(iq.buf) {
		return Chunk{}, false
	}
	c := iq.buf[iq.head]
	iq.buf[iq.head] = Chunk{} // drop the reference so the drained prefix can be GC'd
	iq.head++
	iq.compactLocked()
	iq.notFull.Signal()
	return c, true
}

// compactLocked slides the remaining entries back to index 0 once the
// drained prefix accounts for at least half the backing slice, so a
// long-running queue doesn't grow its buffer without bound.
func (iq *InflightQueue) compactLocked() {
	if iq.head == 0 || iq.head < len(iq.buf)/2 {
		return
	}
	n := copy(iq.buf, iq.buf[iq.head:])
	iq.buf = iq.buf[:n]
	iq.head = 0
}

// Release accounts for a chunk having been fully consumed, freeing its bytes
// from the inflight total. pipeline.Encode's dispatcher calls it right
// after Pop, before handing the chunk to a worker.
func (iq *InflightQueue) Release(n int) {
	iq.mu.Lock()
	iq.inflight -= int64(n)
	if iq.inflight < 0 {
		iq.inflight = 0
	}
	iq.notFull.Broadcast()
	iq.mu.Unlock()
}

// Close signals that no further chunks will be pushed; pending Pop calls
// drain the remaining queue and then return ok=false.
func (iq *InflightQueue) Close() {
	iq.mu.Lock()
	iq.closed = true
	iq.notEmpty.Broadcast()
	iq.notFull.Broadcast()
	iq.mu.Unlock()
}

// waitLocked blocks on cond until signalled or ctx is done. Must be called
// with iq.mu held; re-acquires it before returning.
func (iq *InflightQueue) waitLocked(ctx context.Context, cond *sync.Cond) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		close(done)
		iq.mu.Lock()
		cond.Broadcast()
		iq.mu.Unlock()
	})
	defer stop()
	cond.Wait()
	select {
	case <-done:
		return ctx.Err()
	default:
		return nil
	}
}
