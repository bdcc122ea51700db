package gc

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/Borislavv/direct-ring-buffer/pkg/config"
	"github.com/rs/zerolog/log"
)

// Run periodically forces Go's garbage collector and returns freed pages
// back to the OS.
//
// The soak daemon preallocates its buffer once and then churns only small
// temporaries, so the heap settles far below the GOGC growth target and
// full collections become rare. Over multi-hour runs the leftover garbage
// makes RSS creep upward, which confuses capacity planning for the very
// runs meant to measure steady-state throughput. Forcing a pass on a fixed
// interval keeps memory flat; both intervals are configurable.
func Run(ctx context.Context, cfg *config.Soak) {
	go func() {
		gcTicker := time.NewTicker(cfg.Soak.ForceGC.GCInterval.Std())
		defer gcTicker.Stop()

		freeOsMemTicker := time.NewTicker(cfg.Soak.ForceGC.FreeOsMemInterval.Std())
		defer freeOsMemTicker.Stop()

		log.Info().Msgf(
			"[force-GC] running with gcInterval=%s, freeOsMemInterval=%s",
			cfg.Soak.ForceGC.GCInterval.Std(), cfg.Soak.ForceGC.FreeOsMemInterval.Std(),
		)

		var lastAlloc uint64

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("[force-GC] stopped")
				return

			case <-gcTicker.C:
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)

				runtime.GC()

				log.Info().Msgf(
					"[force-GC] forced GC pass (last GC pass at: %s, pause: %s)",
					time.Unix(0, int64(mem.LastGC)).Format(time.RFC3339Nano),
					lastGCPauseNs(mem.PauseNs),
				)

				lastAlloc = mem.Alloc

			case <-freeOsMemTicker.C:
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)

				if lastAlloc == 0 {
					lastAlloc = mem.Alloc
					continue
				}

				debug.FreeOSMemory() // madvise(DONTNEED) under the hood

				log.Info().Msgf(
					"[force-GC] forcing flush of freed memory to OS (alloc was %s, now %s)",
					fmtBytes(lastAlloc), fmtBytes(mem.Alloc),
				)

				lastAlloc = mem.Alloc
			}
		}
	}()
}

// fmtBytes formats a byte count to a human-readable string.
func fmtBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func lastGCPauseNs(pauses [256]uint64) time.Duration {
	for i := 255; i >= 0; i-- {
		if pauses[i] > 0 {
			return time.Duration(pauses[i])
		}
	}
	return time.Duration(0)
}
