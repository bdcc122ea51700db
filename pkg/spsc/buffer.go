package spsc

import "sync/atomic"

// All requests the whole currently available window from a batch call.
const All = -1

// buffer is the storage and counter shared by a Producer/Consumer pair.
//
// used counts elements holding valid, unread data and is the sole
// cross-handle synchronization point: 0 <= used <= capacity at every
// observable instant. The handle cursors are private to their goroutines
// and need no atomics.
type buffer[T any] struct {
	elements []T
	used     uint64 // atomic
}

func (b *buffer[T]) availableRead() int {
	return int(atomic.LoadUint64(&b.used))
}

func (b *buffer[T]) availableWrite() int {
	return len(b.elements) - int(atomic.LoadUint64(&b.used))
}

// advance moves a handle cursor forward with wraparound. Runs never cross
// the physical end of the storage, so landing exactly on the end is the
// only wrap case.
func (b *buffer[T]) advance(cursor *int, n int) {
	if *cursor+n >= len(b.elements) {
		*cursor = 0
	} else {
		*cursor += n
	}
}

// processWindow is the algorithm shared by the batch read and write paths.
//
// It bounds the transfer to min(max, available) elements (max < 0 means
// unbounded), offers fn at most two contiguous runs (tail of the storage,
// then its head when the window wraps) and advances the cursor by whatever
// fn reports done. A short return from fn ends the call immediately; the
// remainder is never re-offered within the same call. After the loop the
// publish step runs exactly once, making every processed element visible
// to the peer handle.
func (b *buffer[T]) processWindow(
	cursor *int,
	available int,
	max int,
	fn func(run []T, offset int) int,
	publish func(used *uint64, processed int),
) int {
	limit := available
	if max >= 0 && max < available {
		limit = max
	}

	processed := 0
	for processed < limit {
		start := *cursor
		run := len(b.elements) - start
		if rest := limit - processed; run > rest {
			run = rest
		}

		done := fn(b.elements[start:start+run], processed)
		processed += done
		b.advance(cursor, done)

		if done < run {
			// fn did less work than the run it was offered: the call is
			// interrupted, already transferred elements stay committed.
			break
		}
	}

	publish(&b.used, processed)
	return processed
}

// readOne is the single-element fast path bypassing processWindow.
func (b *buffer[T]) readOne(cursor *int) (T, bool) {
	var zero T
	if b.availableRead() == 0 {
		return zero, false
	}
	v := b.elements[*cursor]
	b.advance(cursor, 1)
	atomic.AddUint64(&b.used, ^uint64(0)) // used--
	return v, true
}

// writeOne is the single-element fast path bypassing processWindow.
func (b *buffer[T]) writeOne(cursor *int, v T) bool {
	if b.availableWrite() == 0 {
		return false
	}
	b.elements[*cursor] = v
	b.advance(cursor, 1)
	atomic.AddUint64(&b.used, 1)
	return true
}

// New allocates a buffer of capacity elements and returns the only
// Producer and Consumer bound to it. The single-producer single-consumer
// discipline is structural: the handles are created exactly once here and
// must not be copied or shared between goroutines.
//
// The storage is zeroed and all transfers are plain value copies, so any
// element type works, but reference-carrying types keep whatever the
// consumer last observed alive until the slot is overwritten. A capacity
// of zero is legal and yields a pair permanently reporting zero
// availability on both sides.
func New[T any](capacity int) (*Producer[T], *Consumer[T]) {
	b := &buffer[T]{elements: make([]T, capacity)}
	return &Producer[T]{buf: b}, &Consumer[T]{buf: b}
}
