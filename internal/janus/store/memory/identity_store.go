package memory

import (
	"context"
	"sync"

	"github.com/hzouari/janus/internal/janus/store"
	"github.com/hzouari/janus/internal/janus/types"
)

// IdentityStore is an in-memory implementation for tests and dev
// environments.  Identities and schedules are seeded up front via the Add
// helpers.
type IdentityStore struct {
	mu         sync.RWMutex
	identities map[int64]types.Identity
	schedules  map[int64][]types.Schedule

	// lookups counts FindIdentity + FindActiveSchedules calls so tests can
	// assert the engine never touches the store for unresolved identities.
	lookups int
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		identities: make(map[int64]types.Identity),
		schedules:  make(map[int64][]types.Schedule),
	}
}

func (s *IdentityStore) AddIdentity(id types.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[id.ID] = id
}

func (s *IdentityStore) AddSchedule(sc types.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sc.EmployeeID] = append(s.schedules[sc.EmployeeID], sc)
}

func (s *IdentityStore) FindIdentity(_ context.Context, id int64) (*types.Identity, error) {
	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.identities[id]
	if !ok {
		return nil, nil
	}
	out := ident
	return &out, nil
}

func (s *IdentityStore) FindActiveSchedules(_ context.Context, employeeID int64, dayOfWeek int) ([]types.Schedule, error) {
	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Schedule
	for _, sc := range s.schedules[employeeID] {
		if sc.Active && sc.DayOfWeek == dayOfWeek {
			out = append(out, sc)
		}
	}
	return out, nil
}

// Lookups returns how many store reads have happened.  Test-only helper.
func (s *IdentityStore) Lookups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookups
}

var _ store.IdentityStore = (*IdentityStore)(nil)
