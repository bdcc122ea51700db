package httpserver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Borislavv/direct-ring-buffer/pkg/config"
	"github.com/Borislavv/direct-ring-buffer/pkg/server/controller"
	"github.com/Borislavv/direct-ring-buffer/pkg/server/middleware"
	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// HTTP is the observability server of the soak daemon (metrics, probes).
type HTTP struct {
	ctx    context.Context
	cfg    *config.Soak
	server *fasthttp.Server
	alive  atomic.Bool
}

func New(
	ctx context.Context,
	cfg *config.Soak,
	controllers []controller.HttpController,
	middlewares []middleware.HttpMiddleware,
) (*HTTP, error) {
	s := &HTTP{ctx: ctx, cfg: cfg}
	s.initServer(s.buildRouter(controllers), middlewares)
	return s, nil
}

// Start serves until the context is cancelled, then shuts the server down.
func (s *HTTP) Start() {
	wg := &sync.WaitGroup{}
	defer wg.Wait()

	wg.Add(1)
	go s.serve(wg)

	wg.Add(1)
	go s.shutdown(wg)
}

// IsAlive reports whether the server is still accepting connections.
func (s *HTTP) IsAlive() bool {
	return s.alive.Load()
}

func (s *HTTP) serve(wg *sync.WaitGroup) {
	defer wg.Done()

	name := s.cfg.Soak.Api.Name
	port := s.cfg.Soak.Api.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	s.alive.Store(true)
	defer s.alive.Store(false)

	log.Info().Msgf("[server] %v was started on %v", name, port)
	defer log.Info().Msgf("[server] %v was stopped on %v", name, port)

	if err := s.server.ListenAndServe(port); err != nil {
		log.Error().Err(err).Msgf("[server] %v failed to listen and serve port %v: %v", name, port, err.Error())
	}
}

func (s *HTTP) shutdown(wg *sync.WaitGroup) {
	defer wg.Done()

	<-s.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := s.server.ShutdownWithContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn().Msgf("[server] %v shutdown failed: %v", s.cfg.Soak.Api.Name, err.Error())
		}
	}
}

func (s *HTTP) buildRouter(controllers []controller.HttpController) *router.Router {
	r := router.New()
	for _, contr := range controllers {
		contr.AddRoute(r)
	}
	return r
}

func (s *HTTP) wrapMiddlewaresOverRouterHandler(
	handler fasthttp.RequestHandler,
	middlewares []middleware.HttpMiddleware,
) fasthttp.RequestHandler {
	// last middlewares must be applied at the end
	// in this case we must start the cycle from the end of slice
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i].Middleware(handler)
	}
	return handler
}

func (s *HTTP) initServer(r *router.Router, middlewares []middleware.HttpMiddleware) {
	s.server = &fasthttp.Server{
		GetOnly:                       true,
		ReduceMemoryUsage:             true,
		DisablePreParseMultipartForm:  true,
		DisableHeaderNamesNormalizing: true,
		CloseOnShutdown:               true,
		Handler:                       s.wrapMiddlewaresOverRouterHandler(r.Handler, middlewares),
	}
}
