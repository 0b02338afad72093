package status

import (
	"sort"
	"strings"
	"sync"
)

// Section returns the part of a metric key before the first dot: "march" for
// "march.rays"; keys without a dot form their own section
func Section(key string) string {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i]
	}
	return key
}

// MetricMap holds named metrics of one value type
// Writers fetch a pointer once at setup and update it without the lock
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
	keys  []string // sorted, rebuilt on insert
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, allocating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr := m.items[key]
	m.mu.RUnlock()
	if ptr != nil {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr = m.items[key]; ptr == nil {
		ptr = new(T)
		m.items[key] = ptr
		i := sort.SearchStrings(m.keys, key)
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	return ptr
}

// Range visits metrics in key order, so one section's keys arrive together
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.RangeSection("", fn)
}

// RangeSection visits the metrics of one section in key order; "" visits all
func (m *MetricMap[T]) RangeSection(section string, fn func(key string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := m.keys
	if section != "" {
		prefix := section + "."
		lo := sort.SearchStrings(keys, prefix)
		hi := lo
		for hi < len(keys) && strings.HasPrefix(keys[hi], prefix) {
			hi++
		}
		keys = keys[lo:hi]
	}
	for _, k := range keys {
		fn(k, m.items[k])
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
