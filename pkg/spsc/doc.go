/*
Package spsc implements a fixed-capacity, lock-free ring buffer for exactly
one producer goroutine and one consumer goroutine.

The buffer exposes its storage directly: batch operations hand the caller a
contiguous slice of the underlying array to fill or drain in place, so data
is copied exactly once, by the caller. A transfer that crosses the physical
end of the storage is split into at most two contiguous runs, each offered
to the callback separately, so callbacks never deal with wraparound.

No operation blocks, suspends or allocates. Writes to a full buffer and
reads from an empty buffer return immediately with a zero result; callers
that want to wait must poll Available and back off themselves.

The only shared mutable state between the two handles is a single atomic
counter of occupied elements. Each atomic update that publishes new
availability happens-before the load that observes it, which is the entire
synchronization protocol: the producer only ever touches the free region,
the consumer only the occupied one, and the counter keeps the two regions
disjoint.
*/
package spsc
