package metrics

import (
	"strings"

	"github.com/Borislavv/direct-ring-buffer/pkg/prometheus/metrics/keyword"
	"github.com/VictoriaMetrics/metrics"
)

// Meter publishes soak counters in Prometheus exposition format.
type Meter interface {
	AddWritten(n int)
	AddRead(n int)
	IncWriteCall()
	IncReadCall()
	IncMismatch()
	IncHttpRequest(path string)
	RegisterOccupancy(fn func() float64)
}

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) AddWritten(n int) {
	metrics.GetOrCreateCounter(keyword.WrittenElements).Add(n)
}

func (m *Metrics) AddRead(n int) {
	metrics.GetOrCreateCounter(keyword.ReadElements).Add(n)
}

func (m *Metrics) IncWriteCall() {
	metrics.GetOrCreateCounter(keyword.WriteCalls).Inc()
}

func (m *Metrics) IncReadCall() {
	metrics.GetOrCreateCounter(keyword.ReadCalls).Inc()
}

func (m *Metrics) IncMismatch() {
	metrics.GetOrCreateCounter(keyword.Mismatches).Inc()
}

func (m *Metrics) IncHttpRequest(path string) {
	metrics.GetOrCreateCounter(keyword.HttpRequests + `{path="` + sanitize(path) + `"}`).Inc()
}

// RegisterOccupancy binds the occupancy gauge to a live buffer view.
func (m *Metrics) RegisterOccupancy(fn func() float64) {
	metrics.GetOrCreateGauge(keyword.Occupancy, fn)
}

// sanitize strips characters that would break the label value syntax.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\n':
			return -1
		}
		return r
	}, s)
}
