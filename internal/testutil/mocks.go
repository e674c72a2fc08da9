package testutil

import (
	"context"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"strings"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether any formatted entry at level contains substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level != level {
			continue
		}
		if msg := fmt.Sprintf(e.Format, e.Args...); strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	Dels []string
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	m.Dels = append(m.Dels, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            int
	CacheHits           int
	CacheMisses         int
	PersistenceObserved int
	Extractions         map[string]int // key: "source:outcome"
	ReconcileChanges    int
	LLMFailures         int
	ReportStoreFailures int
	InFlight            []int64
}

func (m *MockMetrics) IncRequestsTotal(string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(string, time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}

func (m *MockMetrics) IncExtractions(source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Extractions == nil {
		m.Extractions = make(map[string]int)
	}
	m.Extractions[source+":"+outcome]++
}

func (m *MockMetrics) IncReconcileChanges() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReconcileChanges++
}

func (m *MockMetrics) IncLLMFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LLMFailures++
}

func (m *MockMetrics) IncReportStoreFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportStoreFailures++
}

func (m *MockMetrics) SetAnalysesInFlight(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InFlight = append(m.InFlight, n)
}

// MockScreenshotStore implements interfaces.ScreenshotStoreInterface in memory.
type MockScreenshotStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutErr  error
	Deleted []string
	seq     int
}

func NewMockScreenshotStore() *MockScreenshotStore {
	return &MockScreenshotStore{Objects: make(map[string][]byte)}
}

func (m *MockScreenshotStore) Put(_ context.Context, username string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.seq++
	ref := fmt.Sprintf("%s/%d.png", username, m.seq)
	m.Objects[ref] = data
	return ref, nil
}

func (m *MockScreenshotStore) Get(_ context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	return data, nil
}

func (m *MockScreenshotStore) URL(_ context.Context, ref string) (string, error) {
	return "/screenshots/" + ref, nil
}

func (m *MockScreenshotStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, ref)
	m.Deleted = append(m.Deleted, ref)
	return nil
}

// MockRecognizer implements acquisition.TextRecognizerInterface.
type MockRecognizer struct {
	Text  string
	Err   error
	Calls int
}

func (m *MockRecognizer) Recognize(_ context.Context, _ []byte, _ string) (string, error) {
	m.Calls++
	return m.Text, m.Err
}

// MockSource implements acquisition.ProfileSourceInterface.
type MockSource struct {
	Page  []byte
	Err   error
	Calls int
}

func (m *MockSource) Fetch(_ context.Context, _ string) ([]byte, error) {
	m.Calls++
	return m.Page, m.Err
}

// MockLocker serializes per key in-process and counts acquisitions.
type MockLocker struct {
	mu    sync.Mutex
	Err   error
	Locks int
}

func (m *MockLocker) Lock(_ context.Context, _ string) (func(), error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	m.Locks++
	return m.mu.Unlock, nil
}
