package qamp

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

type Metrics struct {
	mu            sync.RWMutex
	WorkerCount   int
	JobQueueSize  int
	ActiveWorkers int
	LastScale     time.Time
	TotalJobTime  time.Duration
	JobCount      int64

	// Run counters
	CompletedRuns      int64
	FailedRuns         int64
	SchedulingFailures int64
	RejectedJobs       int64
	TotalIterations    int64
	RunsByWidth        map[int]int64

	// Latency and health
	AverageJobLatency   time.Duration
	P95JobLatency       time.Duration
	P99JobLatency       time.Duration
	JobSuccessRate      float64
	ResourceUtilization float64

	// Sliding windows for quantile and probability summaries
	latencyWindow []float64
	probWindow    []float64
	windowSize    int
}

func NewMetrics() *Metrics {
	return &Metrics{
		RunsByWidth:   make(map[int]int64),
		latencyWindow: make([]float64, 0, 1000),
		probWindow:    make([]float64, 0, 1000),
		windowSize:    1000,
	}
}

// recordRun folds one finished comparison into the counters.
func (m *Metrics) recordRun(startTime time.Time, cmp *Comparison, err error) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++

	if err != nil {
		m.FailedRuns++
	} else {
		m.CompletedRuns++
		m.TotalIterations += int64(cmp.Iterations)
		m.RunsByWidth[cmp.Qubits]++
		m.probWindow = append(m.probWindow, cmp.Probability)
		if len(m.probWindow) > m.windowSize {
			m.probWindow = m.probWindow[1:]
		}
	}
	m.JobSuccessRate = float64(m.CompletedRuns) / float64(m.JobCount)

	m.updateLatencyPercentiles(duration)
}

// updateLatencyPercentiles maintains a sliding window of run latencies and
// recomputes the mean and tail quantiles over it.
func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.latencyWindow = append(m.latencyWindow, duration.Seconds())
	if len(m.latencyWindow) > m.windowSize {
		m.latencyWindow = m.latencyWindow[1:]
	}

	// stat.Quantile wants its input sorted
	sorted := make([]float64, len(m.latencyWindow))
	copy(sorted, m.latencyWindow)
	sort.Float64s(sorted)

	m.AverageJobLatency = secondsToDuration(stat.Mean(sorted, nil))
	m.P95JobLatency = secondsToDuration(stat.Quantile(0.95, stat.Empirical, sorted, nil))
	m.P99JobLatency = secondsToDuration(stat.Quantile(0.99, stat.Empirical, sorted, nil))
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ProbabilitySummary returns the mean and standard deviation of the
// sampled probability mass across recent completed runs.
func (m *Metrics) ProbabilitySummary() (mean, stddev float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.probWindow) == 0 {
		return 0, 0
	}
	mean = stat.Mean(m.probWindow, nil)
	if len(m.probWindow) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(m.probWindow, nil)
}

// ExportMetrics returns a point-in-time snapshot of the counters.
func (m *Metrics) ExportMetrics() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	widths := make(map[int]int64, len(m.RunsByWidth))
	for w, count := range m.RunsByWidth {
		widths[w] = count
	}

	return map[string]any{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"completed_runs":      m.CompletedRuns,
		"failed_runs":         m.FailedRuns,
		"scheduling_failures": m.SchedulingFailures,
		"rejected_jobs":       m.RejectedJobs,
		"success_rate":        m.JobSuccessRate,
		"total_iterations":    m.TotalIterations,
		"runs_by_width":       widths,
		"avg_latency_ms":      m.AverageJobLatency.Milliseconds(),
		"p95_latency_ms":      m.P95JobLatency.Milliseconds(),
		"p99_latency_ms":      m.P99JobLatency.Milliseconds(),
		"memory_utilization":  m.ResourceUtilization,
	}
}
