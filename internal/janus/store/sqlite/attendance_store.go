package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/hzouari/janus/internal/db"
	"github.com/hzouari/janus/internal/janus/store"
)

type AttendanceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttendanceStore(conn *sql.DB, writer *dbpkg.Worker) *AttendanceStore {
	return &AttendanceStore{db: conn, writer: writer}
}

func (s *AttendanceStore) AppendLogEntry(ctx context.Context, rec store.AttendanceRecord) error {
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = time.Now().UTC()
	}
	loggedMs := rec.LoggedAt.UTC().UnixMilli()

	var employeeID any
	if rec.EmployeeID != nil {
		employeeID = *rec.EmployeeID
	}

	var granted int
	if rec.Granted {
		granted = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO attendance_logs(employee_id, logged_at_ms, granted, reason)
VALUES (?, ?, ?, ?);`,
			employeeID, loggedMs, granted, rec.Reason,
		); err != nil {
			return fmt.Errorf("AppendLogEntry insert: %w", err)
		}
		return nil
	})
}

// PruneOlderThan deletes attendance rows logged before the cutoff.  Returns
// the number of rows deleted.  Uses idx_attendance_time for the range scan.
func (s *AttendanceStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM attendance_logs WHERE logged_at_ms < ?;`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

var _ store.AttendanceStore = (*AttendanceStore)(nil)
