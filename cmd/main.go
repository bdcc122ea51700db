package main

import (
	"context"
	"runtime"
	"time"

	"github.com/Borislavv/direct-ring-buffer/internal/soak"
	"github.com/Borislavv/direct-ring-buffer/pkg/config"
	"github.com/Borislavv/direct-ring-buffer/pkg/gc"
	"github.com/Borislavv/direct-ring-buffer/pkg/k8s/probe/liveness"
	"github.com/Borislavv/direct-ring-buffer/pkg/shutdown"
	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"
)

// setMaxProcs automatically sets the optimal GOMAXPROCS value (CPU parallelism)
// based on the available CPUs and cgroup/docker CPU quotas (uses automaxprocs).
func setMaxProcs() {
	if _, err := maxprocs.Set(); err != nil {
		log.Err(err).Msg("[main] setting up GOMAXPROCS value failed")
		panic(err)
	}
	log.Info().Msgf("[main] optimized GOMAXPROCS=%d was set up", runtime.GOMAXPROCS(0))
}

// loadCfg loads the soak configuration (path resolved from APP_ENV).
func loadCfg() (*config.Soak, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Err(err).Msg("[config] failed to load")
		return nil, err
	}
	log.Info().Msgf(
		"[config] loaded (capacity=%d, elements=%d)",
		cfg.Soak.Buffer.Capacity, cfg.Soak.Load.Elements,
	)
	return cfg, nil
}

// Main entrypoint: configures and starts the soak application.
func main() {
	// Create a root context for graceful shutdown and cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optimize GOMAXPROCS for the current environment.
	setMaxProcs()

	// Load the application configuration.
	cfg, cfgErr := loadCfg()
	if cfgErr != nil {
		log.Err(cfgErr).Msg("[main] failed to load soak config")
		return
	}

	if !cfg.Soak.Enabled {
		log.Info().Msg("[main] soak is disabled by config, exiting")
		return
	}

	// Setup graceful shutdown handler (SIGTERM, SIGINT, etc).
	gracefulShutdown := shutdown.NewGraceful(ctx, cancel)
	gracefulShutdown.SetGracefulTimeout(time.Minute)

	// Initialize liveness probe for Kubernetes/Cloud health checks.
	probe := liveness.NewProbe(cfg.Soak.Probe.Timeout.Std())

	// Initialize and start the soak application.
	app, err := soak.NewApp(ctx, cfg, probe)
	if err != nil {
		log.Err(err).Msg("[main] failed to init soak app")
		return
	}

	// Register app for graceful shutdown.
	gracefulShutdown.Add(1)
	go app.Start(gracefulShutdown)

	// Run forced GC for long soak runs.
	if cfg.Soak.ForceGC.Enabled {
		gcCtx, gcCancel := context.WithCancel(ctx)
		defer gcCancel()
		gc.Run(gcCtx, cfg)
	}

	// Listen for OS signals or context cancellation and wait for graceful shutdown.
	if err = gracefulShutdown.ListenCancelAndAwait(); err != nil {
		log.Err(err).Msg("failed to gracefully shut down service")
	}
}
