package runtime

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the process-wide Prometheus collectors the Monitor updates
// during a mission run.
type Metrics struct {
	MissionsTotal    *prometheus.CounterVec
	NodeDuration     prometheus.Histogram
	LoopIterations   prometheus.Gauge
	BlockedTotal     *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// monitorMetrics returns the process-wide Metrics, registering collectors on
// first call.
func monitorMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			MissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "unitport_runtime_missions_total",
				Help: "Completed mission runs by outcome.",
			}, []string{"outcome"}),
			NodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name: "unitport_runtime_node_duration_seconds",
				Help: "Duration of a single node's execution.",
			}),
			LoopIterations: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "unitport_runtime_loop_iterations",
				Help: "Iteration count of the most recently executed loop node.",
			}),
			BlockedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "unitport_runtime_blocked_total",
				Help: "Missions blocked by a guard, by stage.",
			}, []string{"stage"}),
		}
	})
	return metrics
}

// Monitor tracks timing and event counts for one mission run.
type Monitor struct {
	startedAt time.Time
	nodeCount int
}

// NewMonitor starts timing a run.
func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

// RecordNode records one node's execution duration and bumps the event count.
func (m *Monitor) RecordNode(duration time.Duration) {
	m.nodeCount++
	monitorMetrics().NodeDuration.Observe(duration.Seconds())
}

// RecordLoopIteration records the current iteration count of a running loop.
func (m *Monitor) RecordLoopIteration(count int) {
	monitorMetrics().LoopIterations.Set(float64(count))
}

// RecordBlocked increments the blocked-mission counter for a guard stage.
func (m *Monitor) RecordBlocked(stage string) {
	monitorMetrics().BlockedTotal.WithLabelValues(stage).Inc()
}

// Finish records the mission outcome and returns total elapsed time.
func (m *Monitor) Finish(outcome string) time.Duration {
	monitorMetrics().MissionsTotal.WithLabelValues(outcome).Inc()
	return time.Since(m.startedAt)
}

// NodeCount returns how many nodes were recorded this run.
func (m *Monitor) NodeCount() int {
	return m.nodeCount
}
