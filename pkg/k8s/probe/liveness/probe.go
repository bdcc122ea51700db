package liveness

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Liveness is implemented by the application being watched.
type Liveness interface {
	IsAlive(ctx context.Context) bool
}

// Prober reports the last observed health of a watched service.
type Prober interface {
	Watch(ctx context.Context, service Liveness)
	IsAlive() bool
}

type Probe struct {
	timeout time.Duration
	alive   int32 // atomic
}

func NewProbe(timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = time.Second * 5
	}
	return &Probe{timeout: timeout, alive: 1}
}

// Watch polls the service health in the background until the context is
// cancelled. The poll interval is half the probe timeout so a single slow
// check cannot flap the status.
func (p *Probe) Watch(ctx context.Context, service Liveness) {
	interval := p.timeout / 2
	if interval < time.Millisecond*10 {
		interval = time.Millisecond * 10
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
			alive := service.IsAlive(checkCtx)
			cancel()

			if alive {
				atomic.StoreInt32(&p.alive, 1)
			} else {
				if atomic.SwapInt32(&p.alive, 0) == 1 {
					log.Warn().Msg("[liveness] watched service reported not alive")
				}
			}
		}
	}()
}

func (p *Probe) IsAlive() bool {
	return atomic.LoadInt32(&p.alive) == 1
}
