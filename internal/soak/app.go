package soak

import (
	"context"

	"github.com/Borislavv/direct-ring-buffer/internal/soak/api"
	"github.com/Borislavv/direct-ring-buffer/pkg/config"
	"github.com/Borislavv/direct-ring-buffer/pkg/k8s/probe/liveness"
	"github.com/Borislavv/direct-ring-buffer/pkg/prometheus/metrics"
	"github.com/Borislavv/direct-ring-buffer/pkg/rate"
	httpserver "github.com/Borislavv/direct-ring-buffer/pkg/server"
	"github.com/Borislavv/direct-ring-buffer/pkg/server/controller"
	"github.com/Borislavv/direct-ring-buffer/pkg/server/middleware"
	"github.com/Borislavv/direct-ring-buffer/pkg/shutdown"
	"github.com/Borislavv/direct-ring-buffer/pkg/spsc"
	"github.com/Borislavv/direct-ring-buffer/pkg/utils"
	"github.com/rs/zerolog/log"
)

// App defines the soak application lifecycle interface.
type App interface {
	Start(gc shutdown.Gracefuller)
}

// Soak wires one producer/consumer pair to a generator and a verifier and
// exposes the run through metrics and a liveness probe.
type Soak struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Soak
	probe    liveness.Prober
	meter    metrics.Meter
	server   *httpserver.HTTP // nil when the API is disabled
	consumer *spsc.Consumer[uint64]
	gen      *Generator
	ver      *Verifier
	limiter  *rate.Limiter // nil when pacing is disabled
}

// NewApp builds the soak app, wiring together buffer, meter, probe and server.
func NewApp(ctx context.Context, cfg *config.Soak, probe liveness.Prober) (*Soak, error) {
	ctx, cancel := context.WithCancel(ctx)

	meter := metrics.New()
	producer, consumer := spsc.New[uint64](cfg.Soak.Buffer.Capacity)
	meter.RegisterOccupancy(func() float64 { return float64(consumer.Available()) })

	var limiter *rate.Limiter
	if cfg.Soak.Rate.Enabled {
		limiter = rate.NewLimiter(ctx, cfg.Soak.Rate.PerSecond)
	}

	s := &Soak{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		probe:    probe,
		meter:    meter,
		consumer: consumer,
		gen:      NewGenerator(cfg, producer, meter, limiter),
		ver:      NewVerifier(cfg, consumer, meter),
		limiter:  limiter,
	}

	if cfg.Soak.Api.Enabled {
		srv, err := httpserver.New(ctx, cfg,
			[]controller.HttpController{
				api.NewMetricsController(meter),
				api.NewProbeController(probe, meter),
			},
			[]middleware.HttpMiddleware{
				middleware.NewServerNameMiddleware(cfg.Soak.Api.Name),
			},
		)
		if err != nil {
			cancel()
			return nil, err
		}
		s.server = srv
	}

	return s, nil
}

// Start runs the generator and the verifier, reports the final verdict and
// handles graceful shutdown. The Gracefuller is expected to have been Added
// before the call; Done is signalled when shutdown is complete.
func (s *Soak) Start(gc shutdown.Gracefuller) {
	defer func() {
		s.stop()
		gc.Done()
	}()

	log.Info().Msgf("[soak] starting (capacity=%d)", s.consumer.Capacity())

	s.probe.Watch(s.ctx, s) // Does not block the green-thread

	serverCh := make(chan struct{})
	go func() {
		defer close(serverCh)
		if s.server != nil {
			s.server.Start() // Blocks until the server is stopped
		}
	}()

	producerDone := make(chan struct{})
	verifierDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		s.gen.Run(s.ctx)
	}()
	go func() {
		defer close(verifierDone)
		s.ver.Run(s.ctx, producerDone)
	}()
	go s.reportStats()

	<-verifierDone
	s.report()

	// Bounded runs keep the API up afterwards so the final counters stay
	// scrapeable; the server exits once the root context is cancelled.
	<-serverCh
}

// reportStats periodically logs run progress until the app stops.
func (s *Soak) reportStats() {
	t := utils.NewTicker(s.ctx, s.cfg.Soak.StatsInterval.Std())
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t:
			log.Info().Msgf(
				"[soak] written=%d read=%d occupancy=%d/%d",
				s.gen.Written(), s.ver.Read(), s.consumer.Available(), s.consumer.Capacity(),
			)
		}
	}
}

// report logs the final verdict of the run.
func (s *Soak) report() {
	written, read := s.gen.Written(), s.ver.Read()

	switch {
	case s.ver.Failed():
		log.Error().Msgf("[soak] FAILED: sequence mismatch after %d elements", read)
	case written != read:
		log.Error().Msgf("[soak] FAILED: wrote %d elements but verified %d", written, read)
	case s.gen.Digest() != s.ver.Digest():
		log.Error().Msgf("[soak] FAILED: stream digests differ (%x != %x)", s.gen.Digest(), s.ver.Digest())
	case s.consumer.Available() != 0:
		log.Error().Msgf("[soak] FAILED: %d elements left in the buffer", s.consumer.Available())
	default:
		log.Info().Msgf("[soak] OK: %d elements verified, digest %x", read, s.ver.Digest())
	}
}

// stop cancels the app context and releases the limiter.
func (s *Soak) stop() {
	log.Info().Msg("[soak] stopping")

	defer s.cancel()

	if s.limiter != nil {
		s.limiter.Stop()
	}

	log.Info().Msg("[soak] stopped")
}

// IsAlive is called by the liveness probe. The run is unhealthy once the
// verifier observed a FIFO violation or the API server has gone away.
func (s *Soak) IsAlive(_ context.Context) bool {
	if s.ver.Failed() {
		return false
	}
	if s.server != nil && !s.server.IsAlive() {
		log.Info().Msg("[soak] http server has gone away")
		return false
	}
	return true
}
