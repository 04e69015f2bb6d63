package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hzouari/janus/internal/janus/store"
)

// AttendanceStore is an in-memory append-only log of decisions.  It is
// intended for use in tests and dev environments.
type AttendanceStore struct {
	mu      sync.Mutex
	entries []store.AttendanceRecord

	// FailWith, when set, makes every write return that error.  Test hook
	// for exercising the logger's fail-soft path.
	FailWith error
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{}
}

func (s *AttendanceStore) AppendLogEntry(_ context.Context, rec store.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.entries = append(s.entries, rec)
	return nil
}

func (s *AttendanceStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.LoggedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Entries returns a copy of all recorded entries.  Test-only helper.
func (s *AttendanceStore) Entries() []store.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AttendanceRecord, len(s.entries))
	copy(out, s.entries)
	return out
}

var _ store.AttendanceStore = (*AttendanceStore)(nil)
