package spsc

import "sync/atomic"

// Consumer is the read side of a ring buffer pair. At most one goroutine
// may drive it at a time.
type Consumer[T any] struct {
	buf    *buffer[T]
	cursor int
}

// Available returns the number of elements readable right now. The value
// is advisory: the producer may publish more immediately after.
func (c *Consumer[T]) Available() int {
	return c.buf.availableRead()
}

// Capacity returns the fixed capacity of the underlying buffer.
func (c *Consumer[T]) Capacity() int {
	return len(c.buf.elements)
}

// Read offers fn up to max readable elements (All for every available one)
// as at most two contiguous runs. fn receives a source run and the number
// of elements already read during this call, and returns how many leading
// elements of the run it consumed; returning fewer than len(src) ends the
// call with the shortfall never re-offered. The total read is returned and
// the freed space is published to the producer only after all element
// reads are complete. Never blocks: with nothing readable, fn is not
// invoked and 0 is returned.
//
// fn must not return more than len(src), must not mutate src and must not
// retain it beyond the call; the hot path does not defend against any of
// those.
func (c *Consumer[T]) Read(fn func(src []T, offset int) int, max int) int {
	return c.buf.processWindow(&c.cursor, c.buf.availableRead(), max, fn,
		func(used *uint64, processed int) {
			atomic.AddUint64(used, -uint64(processed))
		})
}

// ReadOne reads a single element in FIFO order, reporting false when the
// buffer was empty at the instant of the check.
func (c *Consumer[T]) ReadOne() (T, bool) {
	return c.buf.readOne(&c.cursor)
}
