package spsc

import "sync/atomic"

// Producer is the write side of a ring buffer pair. At most one goroutine
// may drive it at a time.
type Producer[T any] struct {
	buf    *buffer[T]
	cursor int
}

// Available returns the number of elements writable right now. The value
// is advisory: the consumer may free more space immediately after.
func (p *Producer[T]) Available() int {
	return p.buf.availableWrite()
}

// Capacity returns the fixed capacity of the underlying buffer.
func (p *Producer[T]) Capacity() int {
	return len(p.buf.elements)
}

// Write offers fn up to max writable elements (All for every available
// one) as at most two contiguous runs. fn receives a destination run and
// the number of elements already written during this call, and returns how
// many leading elements of the run it filled; returning fewer than
// len(dst) ends the call with the shortfall never re-offered. The total
// written is returned and published to the consumer only after all element
// writes are complete. Never blocks: with no space free, fn is not invoked
// and 0 is returned.
//
// fn must not return more than len(dst) and must not retain dst beyond the
// call; the hot path does not defend against either.
func (p *Producer[T]) Write(fn func(dst []T, offset int) int, max int) int {
	return p.buf.processWindow(&p.cursor, p.buf.availableWrite(), max, fn,
		func(used *uint64, processed int) {
			atomic.AddUint64(used, uint64(processed))
		})
}

// WriteOne writes a single element, reporting false when the buffer was
// full at the instant of the check.
func (p *Producer[T]) WriteOne(v T) bool {
	return p.buf.writeOne(&p.cursor, v)
}
