package spsc

import (
	"math/rand"
	"runtime"
	"sync/atomic"
	"testing"
)

// One goroutine streams a monotonically increasing counter through the
// buffer with randomized batch sizes and occasional single-element writes,
// another drains it the same way and checks strict FIFO order. The used
// counter is the only synchronization between them.
func TestStress_CrossGoroutineFIFO(t *testing.T) {
	const total = 500_000

	p, c := New[uint64](1 << 10)

	var mismatches uint64
	done := make(chan struct{})

	go func() {
		rnd := rand.New(rand.NewSource(1))
		next := uint64(0)
		for next < total {
			if rnd.Intn(16) == 0 {
				if p.WriteOne(next) {
					next++
				} else {
					runtime.Gosched()
				}
				continue
			}
			max := 1 + rnd.Intn(512)
			if rest := total - next; uint64(max) > rest {
				max = int(rest)
			}
			base := next
			n := p.Write(func(dst []uint64, offset int) int {
				for i := range dst {
					dst[i] = base + uint64(offset+i)
				}
				return len(dst)
			}, max)
			if n == 0 {
				runtime.Gosched()
				continue
			}
			next += uint64(n)
		}
	}()

	go func() {
		defer close(done)
		rnd := rand.New(rand.NewSource(2))
		expected := uint64(0)
		for expected < total {
			if rnd.Intn(16) == 0 {
				if v, ok := c.ReadOne(); ok {
					if v != expected {
						atomic.AddUint64(&mismatches, 1)
						return
					}
					expected++
				} else {
					runtime.Gosched()
				}
				continue
			}
			max := 1 + rnd.Intn(512)
			if rest := total - expected; uint64(max) > rest {
				max = int(rest)
			}
			n := c.Read(func(src []uint64, offset int) int {
				for i, v := range src {
					if v != expected+uint64(offset+i) {
						atomic.AddUint64(&mismatches, 1)
						return i
					}
				}
				return len(src)
			}, max)
			if atomic.LoadUint64(&mismatches) > 0 {
				return
			}
			if n == 0 {
				runtime.Gosched()
				continue
			}
			expected += uint64(n)
		}
	}()

	<-done

	if m := atomic.LoadUint64(&mismatches); m > 0 {
		t.Fatalf("sequence mismatch detected (%d)", m)
	}
	if c.Available() != 0 {
		t.Fatalf("buffer not drained: %d elements left", c.Available())
	}
}

func BenchmarkWriteOneReadOne(b *testing.B) {
	p, c := New[uint64](1 << 12)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !p.WriteOne(uint64(i)) {
			b.Fatal("WriteOne failed unexpectedly")
		}
		if _, ok := c.ReadOne(); !ok {
			b.Fatal("ReadOne failed unexpectedly")
		}
	}
}

func BenchmarkBatchCopy(b *testing.B) {
	const batch = 4096
	p, c := New[uint64](1 << 14)
	src := make([]uint64, batch)
	dst := make([]uint64, batch)
	b.SetBytes(batch * 8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n := p.Write(func(run []uint64, offset int) int {
			return copy(run, src[offset:])
		}, batch)
		if n != batch {
			b.Fatalf("wrote %d of %d", n, batch)
		}
		n = c.Read(func(run []uint64, offset int) int {
			return copy(dst[offset:], run)
		}, batch)
		if n != batch {
			b.Fatalf("read %d of %d", n, batch)
		}
	}
}
