// Package testutil provides testing utilities for the foodfast services.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockDirectory is a configurable mock of one dependent service resource,
// implementing both lookup contracts:
//
//	GET /{resource}?ids=i1,i2,...  -> JSON array of known entities (batch)
//	GET /{resource}/{id}           -> one entity or 404 (single)
//
// Failure modes (batch outage, per-id failures, slow responses) are
// injectable so resolver degradation paths can be exercised.
type MockDirectory struct {
	server   *httptest.Server
	resource string

	mu          sync.RWMutex
	entities    map[int64]map[string]any
	failIDs     map[int64]bool
	batchStatus int
	delay       time.Duration

	// Tracking
	BatchCount  int
	SingleCount int
}

// NewMockDirectory creates a mock server for one resource, e.g.
// NewMockDirectory("products").
func NewMockDirectory(resource string) *MockDirectory {
	m := &MockDirectory{
		resource:    resource,
		entities:    make(map[int64]map[string]any),
		failIDs:     make(map[int64]bool),
		batchStatus: http.StatusOK,
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server base URL.
func (m *MockDirectory) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockDirectory) Close() {
	m.server.Close()
}

// SetEntity registers (or replaces) the entity served for an id. The body
// must include the "id" field callers expect in responses.
func (m *MockDirectory) SetEntity(id int64, body map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[id] = body
}

// FailID makes single fetches for an id return 500.
func (m *MockDirectory) FailID(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failIDs[id] = true
}

// SetBatchStatus overrides the status of the batch endpoint. Anything but
// 200 makes the resolver fall back to per-key fetches.
func (m *MockDirectory) SetBatchStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchStatus = code
}

// SetDelay makes every response sleep first, for timeout tests.
func (m *MockDirectory) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Counts returns the number of batch and single requests served.
func (m *MockDirectory) Counts() (batch, single int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.BatchCount, m.SingleCount
}

func (m *MockDirectory) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	delay := m.delay
	m.mu.RUnlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(r.URL.Path, "/")
	switch {
	case path == m.resource:
		m.handleBatch(w, r)
	case strings.HasPrefix(path, m.resource+"/"):
		m.handleSingle(w, strings.TrimPrefix(path, m.resource+"/"))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"unknown path"}`))
	}
}

func (m *MockDirectory) handleBatch(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.BatchCount++
	status := m.batchStatus
	m.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		w.Write([]byte(`{"error":"batch unavailable"}`))
		return
	}

	var out []map[string]any
	for _, part := range strings.Split(r.URL.Query().Get("ids"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		m.mu.RLock()
		body, ok := m.entities[id]
		m.mu.RUnlock()
		if ok {
			out = append(out, body)
		}
	}
	if out == nil {
		out = []map[string]any{}
	}

	json.NewEncoder(w).Encode(out)
}

func (m *MockDirectory) handleSingle(w http.ResponseWriter, rawID string) {
	m.mu.Lock()
	m.SingleCount++
	m.mu.Unlock()

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid id"}`))
		return
	}

	m.mu.RLock()
	failed := m.failIDs[id]
	body, ok := m.entities[id]
	m.mu.RUnlock()

	if failed {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
		return
	}

	json.NewEncoder(w).Encode(body)
}
