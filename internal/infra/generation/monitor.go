package generation

import (
	"sync"
	"time"
)

// ProviderStatus represents the observed health of a provider.
type ProviderStatus int

const (
	StatusHealthy  ProviderStatus = iota // provider responding normally
	StatusDegraded                       // provider slow or failing often
	StatusWarming                        // provider reported a cold start recently
	StatusThrottled
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusDegraded:
		return "degraded"
	case StatusWarming:
		return "warming"
	case StatusThrottled:
		return "throttled"
	default:
		return "healthy"
	}
}

// MonitorStats is a point-in-time snapshot of provider health.
type MonitorStats struct {
	Status         ProviderStatus
	AverageLatency time.Duration
	SuccessCount   int
	FailureCount   int
	ThrottleCount  int
	ColdStarts     int
	LastSuccessAt  time.Time
}

// Monitor tracks latency and failure history for one provider.
type Monitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	successCount  int
	failureCount  int
	throttleCount int
	coldStarts    int

	lastSuccessAt  time.Time
	lastLoadingAt  time.Time
	lastThrottleAt time.Time

	slowResponseThreshold time.Duration
	degradedErrorRate     float64
}

// NewMonitor creates a monitor with default thresholds.
func NewMonitor() *Monitor {
	return &Monitor{
		recentLatencies:       make([]time.Duration, 0, 100),
		maxLatencyWindow:      100,
		slowResponseThreshold: 5 * time.Second,
		degradedErrorRate:     0.3,
	}
}

// RecordSuccess records a successful call with its latency.
func (m *Monitor) RecordSuccess(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.successCount++
	m.lastSuccessAt = time.Now()
	m.recentLatencies = append(m.recentLatencies, latency)
	if len(m.recentLatencies) > m.maxLatencyWindow {
		m.recentLatencies = m.recentLatencies[1:]
	}
}

// RecordFailure records a failed call.
func (m *Monitor) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureCount++
}

// RecordThrottle records a rate-limit response.
func (m *Monitor) RecordThrottle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttleCount++
	m.failureCount++
	m.lastThrottleAt = time.Now()
}

// RecordModelLoading records a cold-start report.
func (m *Monitor) RecordModelLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coldStarts++
	m.lastLoadingAt = time.Now()
}

// Stats returns a snapshot of the monitor state.
func (m *Monitor) Stats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if len(m.recentLatencies) > 0 {
		var total time.Duration
		for _, l := range m.recentLatencies {
			total += l
		}
		avg = total / time.Duration(len(m.recentLatencies))
	}

	return MonitorStats{
		Status:         m.statusLocked(avg),
		AverageLatency: avg,
		SuccessCount:   m.successCount,
		FailureCount:   m.failureCount,
		ThrottleCount:  m.throttleCount,
		ColdStarts:     m.coldStarts,
		LastSuccessAt:  m.lastSuccessAt,
	}
}

func (m *Monitor) statusLocked(avg time.Duration) ProviderStatus {
	if time.Since(m.lastThrottleAt) < time.Minute {
		return StatusThrottled
	}
	if time.Since(m.lastLoadingAt) < time.Minute {
		return StatusWarming
	}

	total := m.successCount + m.failureCount
	if total > 0 && float64(m.failureCount)/float64(total) > m.degradedErrorRate {
		return StatusDegraded
	}
	if avg > m.slowResponseThreshold {
		return StatusDegraded
	}
	return StatusHealthy
}
