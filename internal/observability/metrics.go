package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for the ingestion and
// notification paths plus HTTP traffic.
type Metrics struct {
	mu                sync.Mutex
	requestCount      map[string]int64
	errorCount        map[string]int64
	ingestionOutcomes map[string]int64
	deliveryOutcomes  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:      make(map[string]int64),
		errorCount:        make(map[string]int64),
		ingestionOutcomes: make(map[string]int64),
		deliveryOutcomes:  make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordIngestion counts one pipeline outcome: created, appended, or
// duplicate.
func (m *Metrics) RecordIngestion(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingestionOutcomes[outcome]++
}

// RecordDelivery counts one channel delivery attempt.
func (m *Metrics) RecordDelivery(channel string, ok bool) {
	if m == nil {
		return
	}
	key := channel + "|ok"
	if !ok {
		key = channel + "|failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveryOutcomes[key]++
}

// IngestionCount returns the counter for one pipeline outcome.
func (m *Metrics) IngestionCount(outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingestionOutcomes[outcome]
}

// DeliveryCount returns the counter for a channel attempt result.
func (m *Metrics) DeliveryCount(channel string, ok bool) int64 {
	if m == nil {
		return 0
	}
	key := channel + "|ok"
	if !ok {
		key = channel + "|failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deliveryOutcomes[key]
}
