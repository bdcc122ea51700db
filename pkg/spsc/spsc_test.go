package spsc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBuffer_Empty(t *testing.T) {
	p, c := New[byte](10)
	assert.Equal(t, 10, p.Available())
	assert.Equal(t, 0, c.Available())
	assert.Equal(t, 10, p.Capacity())
	assert.Equal(t, 10, c.Capacity())

	// Nothing readable: the callback must not run.
	n := c.Read(func(src []byte, offset int) int {
		t.Fatal("callback invoked on empty buffer")
		return 0
	}, All)
	assert.Equal(t, 0, n)
}

func TestWrite_CallbackDeclines(t *testing.T) {
	p, _ := New[byte](10)
	n := p.Write(func(dst []byte, offset int) int { return 0 }, All)
	assert.Equal(t, 0, n)
	assert.Equal(t, 10, p.Available())
}

func TestWrite_Full(t *testing.T) {
	p, c := New[byte](10)

	n := p.Write(func(dst []byte, offset int) int {
		for i := range dst {
			dst[i] = byte(i)
		}
		return len(dst)
	}, All)
	assert.Equal(t, 10, n)
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 10, c.Available())

	// Full buffer: the callback must not run.
	n = p.Write(func(dst []byte, offset int) int {
		t.Fatal("callback invoked on full buffer")
		return 0
	}, All)
	assert.Equal(t, 0, n)
}

func TestWriteRead_FullCycle(t *testing.T) {
	p, c := New[byte](10)
	assert.Equal(t, 10, p.Write(func(dst []byte, _ int) int { return len(dst) }, All))
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 10, c.Available())
	assert.Equal(t, 10, c.Read(func(src []byte, _ int) int { return len(src) }, All))
	assert.Equal(t, 10, p.Available())
	assert.Equal(t, 0, c.Available())
}

func TestCapacityInvariant(t *testing.T) {
	p, c := New[int](7)
	check := func() {
		assert.Equal(t, 7, p.Available()+c.Available())
	}
	check()
	for i := 0; i < 25; i++ {
		p.Write(func(dst []int, _ int) int {
			n := len(dst)
			if n > 3 {
				n = 3
			}
			return n
		}, 3)
		check()
		c.Read(func(src []int, _ int) int {
			n := len(src)
			if n > 2 {
				n = 2
			}
			return n
		}, 2)
		check()
	}
}

func TestWriteOne_UntilFull(t *testing.T) {
	p, c := New[byte](5)
	for i := 0; i < 5; i++ {
		assert.True(t, p.WriteOne(byte(i)))
	}
	assert.False(t, p.WriteOne(5))
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 5, c.Available())
}

func TestSingleElement_FIFORoundTrip(t *testing.T) {
	p, c := New[byte](5)
	for i := 0; i < 5; i++ {
		assert.True(t, p.WriteOne(byte(i)))
	}
	assert.False(t, p.WriteOne(5))
	for i := 0; i < 5; i++ {
		v, ok := c.ReadOne()
		assert.True(t, ok)
		assert.Equal(t, byte(i), v)
	}
	_, ok := c.ReadOne()
	assert.False(t, ok)
}

func TestSingleElement_InterleavedWraparound(t *testing.T) {
	p, c := New[byte](5)
	assert.True(t, p.WriteOne(0))
	v, ok := c.ReadOne()
	assert.True(t, ok)
	assert.Equal(t, byte(0), v)

	// Keep the pair two elements apart so the cursors lap the storage.
	assert.True(t, p.WriteOne(1))
	assert.True(t, p.WriteOne(2))
	for i := byte(3); i < 8; i++ {
		v, ok = c.ReadOne()
		assert.True(t, ok)
		assert.Equal(t, i-2, v)
		assert.True(t, p.WriteOne(i))
	}
	for i := byte(6); i < 8; i++ {
		v, ok = c.ReadOne()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok = c.ReadOne()
	assert.False(t, ok)
}

func TestWrite_MaxBounded(t *testing.T) {
	p, c := New[byte](10)
	n := p.Write(func(dst []byte, offset int) int {
		assert.Equal(t, 0, offset)
		assert.Len(t, dst, 5)
		copy(dst, []byte{10, 20, 30, 40, 50})
		return len(dst)
	}, 5)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, p.Available())
	assert.Equal(t, 5, c.Available())

	n = c.Read(func(src []byte, offset int) int {
		assert.Equal(t, 0, offset)
		assert.Equal(t, []byte{10, 20, 30, 40, 50}, src)
		return len(src)
	}, 5)
	assert.Equal(t, 5, n)
}

func TestRead_MaxBounded(t *testing.T) {
	p, c := New[byte](10)
	assert.Equal(t, 10, p.Write(func(dst []byte, _ int) int { return len(dst) }, All))
	assert.Equal(t, 3, c.Read(func(src []byte, _ int) int { return len(src) }, 3))
	assert.Equal(t, 3, p.Available())
	assert.Equal(t, 7, c.Available())
}

// A transfer crossing the physical end of the storage must arrive as two
// contiguous runs, tail then head, with offsets 0 and capacity-k.
func TestWraparound_TwoRuns(t *testing.T) {
	p, c := New[byte](10)

	n := p.Write(func(dst []byte, offset int) int {
		assert.Equal(t, 0, offset)
		assert.Len(t, dst, 5)
		copy(dst, []byte{10, 20, 30, 40, 50})
		return len(dst)
	}, 5)
	assert.Equal(t, 5, n)

	n = c.Read(func(src []byte, _ int) int {
		assert.Equal(t, []byte{10, 20, 30}, src)
		return len(src)
	}, 3)
	assert.Equal(t, 3, n)

	calls := 0
	n = p.Write(func(dst []byte, offset int) int {
		calls++
		switch offset {
		case 0:
			assert.Len(t, dst, 5)
			copy(dst, []byte{60, 70, 80, 90, 100})
		case 5:
			assert.Len(t, dst, 3)
			copy(dst, []byte{110, 120, 130})
		default:
			t.Fatalf("unexpected offset %d", offset)
		}
		return len(dst)
	}, All)
	assert.Equal(t, 8, n)
	assert.Equal(t, 2, calls)

	calls = 0
	n = c.Read(func(src []byte, offset int) int {
		calls++
		switch offset {
		case 0:
			assert.Equal(t, []byte{40, 50, 60, 70, 80, 90, 100}, src)
		case 7:
			assert.Equal(t, []byte{110, 120, 130}, src)
		default:
			t.Fatalf("unexpected offset %d", offset)
		}
		return len(src)
	}, All)
	assert.Equal(t, 10, n)
	assert.Equal(t, 2, calls)
}

// A short return from the callback ends the call: the second run is never
// offered even though more space is available.
func TestEarlyInterruption(t *testing.T) {
	p, c := New[byte](10)

	calls := 0
	n := p.Write(func(dst []byte, offset int) int {
		calls++
		assert.Equal(t, 0, offset)
		assert.Len(t, dst, 10)
		for i := 0; i < 5; i++ {
			dst[i] = byte(i)
		}
		return 5
	}, All)
	assert.Equal(t, 5, n)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5, c.Available())

	// Same contract on the read side, across a wrapped window.
	assert.Equal(t, 3, c.Read(func(src []byte, _ int) int { return len(src) }, 3))
	assert.Equal(t, 8, p.Write(func(dst []byte, _ int) int { return len(dst) }, All))

	calls = 0
	n = c.Read(func(src []byte, _ int) int {
		calls++
		return 2 // shorter than the 7-element tail run
	}, All)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 8, c.Available())
}

func TestZeroCapacity(t *testing.T) {
	p, c := New[byte](0)
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 0, c.Available())
	assert.Equal(t, 0, p.Capacity())

	assert.False(t, p.WriteOne(1))
	_, ok := c.ReadOne()
	assert.False(t, ok)

	n := p.Write(func(dst []byte, _ int) int {
		t.Fatal("callback invoked on zero-capacity buffer")
		return 0
	}, All)
	assert.Equal(t, 0, n)
}

func TestSingleSlotBuffer(t *testing.T) {
	p, c := New[byte](1)
	assert.Equal(t, 1, p.Available())
	assert.Equal(t, 0, c.Available())

	n := p.Write(func(dst []byte, _ int) int {
		dst[0] = 42
		return 1
	}, All)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, p.Available())
	assert.Equal(t, 1, c.Available())

	n = c.Read(func(src []byte, _ int) int {
		assert.Equal(t, byte(42), src[0])
		return 1
	}, All)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, p.Available())
	assert.Equal(t, 0, c.Available())
}

func TestBatch_NoLossNoDuplication(t *testing.T) {
	p, c := New[int](16)

	var got []int
	next := 0
	for next < 1000 || len(got) < 1000 {
		p.Write(func(dst []int, _ int) int {
			n := len(dst)
			if rest := 1000 - next; n > rest {
				n = rest
			}
			for i := 0; i < n; i++ {
				dst[i] = next
				next++
			}
			return n
		}, 7)
		c.Read(func(src []int, _ int) int {
			got = append(got, src...)
			return len(src)
		}, 5)
	}

	assert.Len(t, got, 1000)
	for i, v := range got {
		if v != i {
			t.Fatalf("element %d: got %d", i, v)
		}
	}
	assert.Equal(t, 0, c.Available())
}
