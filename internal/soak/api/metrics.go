package api

import (
	"github.com/Borislavv/direct-ring-buffer/pkg/prometheus/metrics"
	vmmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/fasthttp/router"
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
)

const metricsRoutePath = "/metrics"

// MetricsController exposes the soak counters in Prometheus format.
type MetricsController struct {
	meter metrics.Meter
}

func NewMetricsController(meter metrics.Meter) *MetricsController {
	return &MetricsController{meter: meter}
}

func (c *MetricsController) handle(r *fasthttp.RequestCtx) {
	c.meter.IncHttpRequest(strconv.B2S(r.Path()))
	r.SetStatusCode(fasthttp.StatusOK)
	vmmetrics.WritePrometheus(r, true)
}

// AddRoute attaches controller's route(s) to the provided router.
func (c *MetricsController) AddRoute(router *router.Router) {
	router.GET(metricsRoutePath, c.handle)
}
