// Package monitoring exposes Prometheus metrics for the service.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	FileOpsTotal *prometheus.CounterVec

	ExecTotal    *prometheus.CounterVec
	ExecDuration prometheus.Histogram

	SkillLoadsTotal  prometheus.Counter
	WorkspacesActive prometheus.Gauge

	MountReadyAttempts *prometheus.CounterVec
}

// New creates the metrics collectors.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentfs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentfs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		FileOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentfs_file_operations_total",
				Help: "Total number of file operations by type and outcome",
			},
			[]string{"op", "status"},
		),
		ExecTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentfs_executions_total",
				Help: "Total number of sandboxed command executions by status",
			},
			[]string{"status"},
		),
		ExecDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentfs_execution_duration_seconds",
				Help:    "Sandboxed command duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
			},
		),
		SkillLoadsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentfs_skill_loads_total",
				Help: "Total number of skill load calls",
			},
		),
		WorkspacesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentfs_workspaces_active",
				Help: "Number of active workspaces",
			},
		),
		MountReadyAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentfs_mount_ready_attempts_total",
				Help: "Mount readiness probe attempts by prefix and outcome",
			},
			[]string{"prefix", "outcome"},
		),
	}
}

// RecordFileOp counts one file operation.
func (m *Metrics) RecordFileOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FileOpsTotal.WithLabelValues(op, status).Inc()
}
