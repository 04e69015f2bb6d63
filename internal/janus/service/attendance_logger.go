package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/janus/store"
	"github.com/hzouari/janus/internal/janus/types"
)

const defaultWriteTimeout = 2 * time.Second

// AttendanceLogger appends one audit row per decision.  Writes are bounded
// by a timeout; a failed or timed-out write is dropped with a warning
// rather than retried on the decision path — the log is an audit trail, not
// a gate for door control.
type AttendanceLogger struct {
	store   store.AttendanceStore
	timeout time.Duration
	logger  *log.Logger
}

func NewAttendanceLogger(st store.AttendanceStore, timeout time.Duration, logger *log.Logger) *AttendanceLogger {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &AttendanceLogger{store: st, timeout: timeout, logger: logger}
}

// Record persists d.  The returned error is informational; callers continue
// serving regardless.
func (l *AttendanceLogger) Record(ctx context.Context, d types.Decision, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rec := store.AttendanceRecord{
		EmployeeID: d.IdentityID,
		LoggedAt:   now.UTC(),
		Granted:    d.Granted,
		Reason:     string(d.Reason),
	}

	if err := l.store.AppendLogEntry(ctx, rec); err != nil {
		l.logger.WithError(err).WithFields(log.Fields{
			"granted": d.Granted,
			"reason":  d.Reason,
		}).Warn("attendance log write dropped")
		return err
	}
	return nil
}
