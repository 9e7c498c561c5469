// Package metrics HTTP 层 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics HTTP 请求指标
type HTTPMetrics struct {
	// RequestsTotal HTTP 请求总数
	RequestsTotal *prometheus.CounterVec
	// RequestDuration HTTP 请求耗时
	RequestDuration *prometheus.HistogramVec
	// InFlight 正在处理的请求数
	InFlight prometheus.Gauge
}

// New 创建并注册 HTTP 指标，registerer 为 nil 时使用默认注册器
func New(registerer prometheus.Registerer) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "http",
				Subsystem: "server",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"path", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "http",
				Subsystem: "server",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "http",
			Subsystem: "server",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
	}

	registerer.MustRegister(m.RequestsTotal, m.RequestDuration, m.InFlight)
	return m
}
