package store

import (
	"context"
	"time"

	"github.com/hzouari/janus/internal/janus/types"
)

// AttendanceRecord is one row of the append-only audit log.  EmployeeID is
// nil only when the recognizer produced no id at all; a resolved id that is
// unknown to the store is kept verbatim so the two cases stay
// distinguishable in the log.
type AttendanceRecord struct {
	EmployeeID *int64
	LoggedAt   time.Time
	Granted    bool
	Reason     string
}

// IdentityStore is the read surface the decision engine needs.  FindIdentity
// returns (nil, nil) when no identity with that id exists.
type IdentityStore interface {
	FindIdentity(ctx context.Context, id int64) (*types.Identity, error)
	FindActiveSchedules(ctx context.Context, employeeID int64, dayOfWeek int) ([]types.Schedule, error)
}

// AttendanceStore persists decisions as an append-only audit log.  Rows are
// never mutated; PruneOlderThan exists only for retention housekeeping.
type AttendanceStore interface {
	AppendLogEntry(ctx context.Context, rec AttendanceRecord) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
