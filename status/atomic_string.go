package status

import (
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen bounds stored labels, in bytes
const MaxStringLen = 32

// AtomicString publishes a short label such as the traveler's active context
// and counts how often it changed value
type AtomicString struct {
	ptr     atomic.Pointer[string]
	changes atomic.Int64
}

// Store publishes val, cut to MaxStringLen on a rune boundary, and reports
// whether it differs from the previous label
func (s *AtomicString) Store(val string) bool {
	if len(val) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(val[cut]) {
			cut--
		}
		val = val[:cut]
	}
	old := s.ptr.Swap(&val)
	if old != nil && *old == val {
		return false
	}
	s.changes.Add(1)
	return true
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

// Changes counts stores that replaced the label with a different one,
// including the first
func (s *AtomicString) Changes() int64 {
	return s.changes.Load()
}
