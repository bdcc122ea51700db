package soak

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Borislavv/direct-ring-buffer/pkg/config"
	"github.com/Borislavv/direct-ring-buffer/pkg/prometheus/metrics"
	"github.com/Borislavv/direct-ring-buffer/pkg/spsc"
	"github.com/rs/zerolog/log"
	xrate "golang.org/x/time/rate"
)

// Verifier drives the consumer side of the soak: it drains the buffer with
// randomized batch sizes, asserts that every element equals the
// independently tracked expected counter, and folds the mirror digest.
type Verifier struct {
	cfg      *config.Soak
	consumer *spsc.Consumer[uint64]
	meter    metrics.Meter

	read     uint64 // atomic, read by the stats reporter
	failed   uint32 // atomic
	digest   uint64 // owned by the verifier goroutine, read after Run returns
	progress xrate.Sometimes
}

func NewVerifier(cfg *config.Soak, consumer *spsc.Consumer[uint64], meter metrics.Meter) *Verifier {
	return &Verifier{
		cfg:      cfg,
		consumer: consumer,
		meter:    meter,
		progress: xrate.Sometimes{Interval: 3 * time.Second},
	}
}

// Read returns the number of elements verified so far.
func (v *Verifier) Read() uint64 {
	return atomic.LoadUint64(&v.read)
}

// Digest returns the stream digest. Valid only after Run has returned.
func (v *Verifier) Digest() uint64 {
	return v.digest
}

// Failed reports whether a FIFO order violation was observed.
func (v *Verifier) Failed() bool {
	return atomic.LoadUint32(&v.failed) == 1
}

// Run drains and verifies until the producer is done and the buffer is
// empty, or until the first mismatch. It intentionally outlives context
// cancellation long enough to drain what the generator already published.
func (v *Verifier) Run(ctx context.Context, producerDone <-chan struct{}) {
	var (
		rnd      = rand.New(rand.NewSource(time.Now().UnixNano() + 1))
		load     = v.cfg.Soak.Load
		batchLen = load.Batch.Max - load.Batch.Min + 1
		expected uint64
	)

	log.Info().Msg("[verifier] starting")
	defer func() { log.Info().Msgf("[verifier] finished: %d elements verified", expected) }()

	for {
		if rnd.Float64() < load.SingleRatio {
			val, ok := v.consumer.ReadOne()
			if !ok {
				if v.drained(producerDone) {
					return
				}
				runtime.Gosched()
				continue
			}
			if val != expected {
				v.fail(expected, val)
				return
			}
			v.digest = foldDigest(v.digest, val)
			expected++
			atomic.AddUint64(&v.read, 1)
			v.meter.AddRead(1)
			continue
		}

		var (
			mismatched    bool
			wantAt, gotAt uint64
		)
		n := v.consumer.Read(func(src []uint64, offset int) int {
			for i, val := range src {
				want := expected + uint64(offset+i)
				if val != want {
					// Commit the verified prefix and interrupt the call.
					wantAt, gotAt, mismatched = want, val, true
					return i
				}
				v.digest = foldDigest(v.digest, val)
			}
			return len(src)
		}, load.Batch.Min+rnd.Intn(batchLen))

		if n > 0 {
			expected += uint64(n)
			atomic.AddUint64(&v.read, uint64(n))
			v.meter.AddRead(n)
			v.meter.IncReadCall()
			v.progress.Do(func() {
				log.Info().Msgf("[verifier] %d elements verified", expected)
			})
		}
		if mismatched {
			v.fail(wantAt, gotAt)
			return
		}
		if n == 0 {
			if v.drained(producerDone) {
				return
			}
			runtime.Gosched()
		}
	}
}

// drained reports whether the producer has stopped and nothing is left to
// read. Checked only after an empty read, so a still-busy producer never
// terminates the loop early.
func (v *Verifier) drained(producerDone <-chan struct{}) bool {
	select {
	case <-producerDone:
		return v.consumer.Available() == 0
	default:
		return false
	}
}

func (v *Verifier) fail(want, got uint64) {
	atomic.StoreUint32(&v.failed, 1)
	v.meter.IncMismatch()
	log.Error().Msgf("[verifier] sequence mismatch: want %d, got %d", want, got)
}
