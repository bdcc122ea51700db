package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Gracefuller is the part of Graceful handed to managed goroutines: they
// register through Add and report completion through Done.
type Gracefuller interface {
	Add(delta int)
	Done()
}

// Graceful couples OS signal handling with a WaitGroup so the process only
// exits after every registered goroutine has finished, or the timeout hits.
type Graceful struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewGraceful(ctx context.Context, cancel context.CancelFunc) *Graceful {
	return &Graceful{ctx: ctx, cancel: cancel, timeout: time.Second * 30}
}

func (g *Graceful) SetGracefulTimeout(timeout time.Duration) {
	g.timeout = timeout
}

func (g *Graceful) Add(delta int) {
	g.wg.Add(delta)
}

func (g *Graceful) Done() {
	g.wg.Done()
}

// ListenCancelAndAwait blocks until a termination signal arrives or the
// root context is cancelled, then cancels the context and waits for all
// registered goroutines within the graceful timeout.
func (g *Graceful) ListenCancelAndAwait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("[shutdown] received %v, shutting down", sig)
	case <-g.ctx.Done():
		log.Info().Msg("[shutdown] context closed, shutting down")
	}

	g.cancel()

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		g.wg.Wait()
	}()

	select {
	case <-doneCh:
		return nil
	case <-time.After(g.timeout):
		return errors.New("graceful shutdown timed out after " + g.timeout.String())
	}
}
