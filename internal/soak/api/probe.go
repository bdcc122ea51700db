package api

import (
	"github.com/Borislavv/direct-ring-buffer/pkg/k8s/probe/liveness"
	"github.com/Borislavv/direct-ring-buffer/pkg/prometheus/metrics"
	"github.com/fasthttp/router"
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
)

const k8sProbeRoutePath = "/k8s/probe"

var (
	successResponseBytes = []byte(`{
	  "status": 200,
	  "message": "I'm fine :D"
	}`)
	failureResponseBytes = []byte(`{
	  "status": 503,
	  "message": "soak is not healthy"
	}`)
)

// ProbeController reports the liveness of the soak run: it goes unhealthy
// once the verifier observes a FIFO violation or the server dies.
type ProbeController struct {
	probe liveness.Prober
	meter metrics.Meter
}

func NewProbeController(probe liveness.Prober, meter metrics.Meter) *ProbeController {
	return &ProbeController{probe: probe, meter: meter}
}

func (c *ProbeController) handle(r *fasthttp.RequestCtx) {
	c.meter.IncHttpRequest(strconv.B2S(r.Path()))

	if c.probe.IsAlive() {
		r.SetStatusCode(fasthttp.StatusOK)
		_, _ = r.Write(successResponseBytes)
		return
	}

	r.SetStatusCode(fasthttp.StatusServiceUnavailable)
	_, _ = r.Write(failureResponseBytes)
}

// AddRoute attaches controller's route(s) to the provided router.
func (c *ProbeController) AddRoute(router *router.Router) {
	router.GET(k8sProbeRoutePath, c.handle)
}
