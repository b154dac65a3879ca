package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator counts per prefix in memory: REG-2026-00001, REG-2026-00002...
// Err, when set, is returned instead.
type MockGenerator struct {
	Err error

	mu       sync.Mutex
	counters map[string]int64
}

var _ Generator = (*MockGenerator)(nil)

func (m *MockGenerator) Next(_ context.Context, cfg Config, at time.Time) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[cfg.Prefix]++
	return fmt.Sprintf("%s-%s-%05d", cfg.Prefix, at.Format("2006"), m.counters[cfg.Prefix]), nil
}
