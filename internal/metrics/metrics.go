// Package metrics exposes Prometheus counters for tool calls, resource reads
// and provider requests.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todoist_mcp"

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	toolCalls       *prometheus.CounterVec
	resourceReads   *prometheus.CounterVec
	gatewayRequests *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		resourceReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_reads_total",
			Help:      "Resource reads by resource kind and outcome.",
		}, []string{"kind", "outcome"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Requests sent to the task provider by method, endpoint and status code.",
		}, []string{"method", "endpoint", "code"}),
	}
	m.registry.MustRegister(m.toolCalls, m.resourceReads, m.gatewayRequests)
	return m
}

// ToolCall counts one tool invocation.
func (m *Metrics) ToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// ResourceRead counts one resource read.
func (m *Metrics) ResourceRead(kind, outcome string) {
	if m == nil {
		return
	}
	m.resourceReads.WithLabelValues(kind, outcome).Inc()
}

// GatewayRequest counts one provider request. code is 0 when no response arrived.
func (m *Metrics) GatewayRequest(method, endpoint string, code int) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
