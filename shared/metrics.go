package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks request outcomes and custom counters for a service
type ServiceMetrics struct {
	serviceName           string
	totalRequests         int64
	successfulRequests    int64
	failedRequests        int64
	totalProcessingTime   time.Duration
	averageProcessingTime time.Duration
	lastUpdated           time.Time
	customCounters        map[string]int64
	mutex                 sync.RWMutex
}

// MetricsSnapshot is a point-in-time copy of ServiceMetrics
type MetricsSnapshot struct {
	ServiceName           string           `json:"service_name"`
	TotalRequests         int64            `json:"total_requests"`
	SuccessfulRequests    int64            `json:"successful_requests"`
	FailedRequests        int64            `json:"failed_requests"`
	AverageProcessingTime time.Duration    `json:"average_processing_time_ns"`
	SuccessRate           float64          `json:"success_rate"`
	LastUpdated           time.Time        `json:"last_updated"`
	Counters              map[string]int64 `json:"counters"`
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName:    serviceName,
		lastUpdated:    time.Now(),
		customCounters: make(map[string]int64),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests++
	m.totalProcessingTime += processingTime
	m.averageProcessingTime = time.Duration(int64(m.totalProcessingTime) / m.totalRequests)

	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}

	m.lastUpdated = time.Now()
}

// IncrementCounter increments a named counter
func (m *ServiceMetrics) IncrementCounter(key string) {
	m.AddToCounter(key, 1)
}

// AddToCounter adds delta to a named counter
func (m *ServiceMetrics) AddToCounter(key string, delta int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.customCounters[key] += delta
	m.lastUpdated = time.Now()
}

// Counter returns the current value of a named counter
func (m *ServiceMetrics) Counter(key string) int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.customCounters[key]
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.successRateLocked()
}

func (m *ServiceMetrics) successRateLocked() float64 {
	if m.totalRequests == 0 {
		return 0.0
	}
	return float64(m.successfulRequests) / float64(m.totalRequests) * 100.0
}

// Snapshot returns a thread-safe copy of the current metrics
func (m *ServiceMetrics) Snapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.customCounters))
	for k, v := range m.customCounters {
		counters[k] = v
	}

	return MetricsSnapshot{
		ServiceName:           m.serviceName,
		TotalRequests:         m.totalRequests,
		SuccessfulRequests:    m.successfulRequests,
		FailedRequests:        m.failedRequests,
		AverageProcessingTime: m.averageProcessingTime,
		SuccessRate:           m.successRateLocked(),
		LastUpdated:           m.lastUpdated,
		Counters:              counters,
	}
}

// LogSummary logs a summary of the current metrics
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.Snapshot()

	logrus.WithFields(logrus.Fields{
		"service_name":            snapshot.ServiceName,
		"total_requests":          snapshot.TotalRequests,
		"successful_requests":     snapshot.SuccessfulRequests,
		"failed_requests":         snapshot.FailedRequests,
		"success_rate":            snapshot.SuccessRate,
		"average_processing_time": snapshot.AverageProcessingTime,
		"counters":                snapshot.Counters,
	}).Info("Service metrics summary")
}
