package soak

import (
	"context"
	"encoding/binary"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Borislavv/direct-ring-buffer/pkg/config"
	"github.com/Borislavv/direct-ring-buffer/pkg/prometheus/metrics"
	"github.com/Borislavv/direct-ring-buffer/pkg/rate"
	"github.com/Borislavv/direct-ring-buffer/pkg/spsc"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
)

// foldDigest mixes one element into a running xxh3 stream digest. The
// generator and the verifier fold the same values in the same order, so
// equal digests at the end prove the stream arrived intact.
func foldDigest(acc, v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return xxh3.HashSeed(b[:], acc)
}

// Generator drives the producer side of the soak: a monotonically
// increasing counter streamed with randomized batch sizes and an
// occasional single-element write mixed in.
type Generator struct {
	cfg      *config.Soak
	producer *spsc.Producer[uint64]
	meter    metrics.Meter
	limiter  *rate.Limiter // nil when pacing is disabled

	written uint64 // atomic, read by the stats reporter
	digest  uint64 // owned by the generator goroutine, read after Run returns
}

func NewGenerator(
	cfg *config.Soak,
	producer *spsc.Producer[uint64],
	meter metrics.Meter,
	limiter *rate.Limiter,
) *Generator {
	return &Generator{cfg: cfg, producer: producer, meter: meter, limiter: limiter}
}

// Written returns the number of elements pushed so far.
func (g *Generator) Written() uint64 {
	return atomic.LoadUint64(&g.written)
}

// Digest returns the stream digest. Valid only after Run has returned.
func (g *Generator) Digest() uint64 {
	return g.digest
}

// Run streams elements until the configured total is written or the
// context is cancelled. The buffer never blocks, so a full buffer is
// handled by yielding and retrying.
func (g *Generator) Run(ctx context.Context) {
	var (
		rnd      = rand.New(rand.NewSource(time.Now().UnixNano()))
		load     = g.cfg.Soak.Load
		target   = load.Elements
		batchLen = load.Batch.Max - load.Batch.Min + 1
		next     uint64
	)

	log.Info().Msgf("[generator] starting (target=%d, batch=[%d..%d])", target, load.Batch.Min, load.Batch.Max)
	defer func() { log.Info().Msgf("[generator] finished: %d elements written", next) }()

	for ctx.Err() == nil && (target == 0 || next < target) {
		if g.limiter != nil {
			select {
			case <-ctx.Done():
				return
			case <-g.limiter.Chan():
			}
		}

		if rnd.Float64() < load.SingleRatio {
			if !g.producer.WriteOne(next) {
				runtime.Gosched()
				continue
			}
			g.digest = foldDigest(g.digest, next)
			next++
			atomic.AddUint64(&g.written, 1)
			g.meter.AddWritten(1)
			continue
		}

		max := load.Batch.Min + rnd.Intn(batchLen)
		if target > 0 {
			if rest := target - next; uint64(max) > rest {
				max = int(rest)
			}
		}

		base := next
		n := g.producer.Write(func(dst []uint64, offset int) int {
			for i := range dst {
				dst[i] = base + uint64(offset+i)
			}
			return len(dst)
		}, max)
		if n == 0 {
			runtime.Gosched()
			continue
		}

		for v := next; v < next+uint64(n); v++ {
			g.digest = foldDigest(g.digest, v)
		}
		next += uint64(n)
		atomic.AddUint64(&g.written, uint64(n))
		g.meter.AddWritten(n)
		g.meter.IncWriteCall()
	}
}
