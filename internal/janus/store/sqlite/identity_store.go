package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hzouari/janus/internal/janus/store"
	"github.com/hzouari/janus/internal/janus/types"
)

type IdentityStore struct {
	db *sql.DB
}

func NewIdentityStore(conn *sql.DB) *IdentityStore {
	return &IdentityStore{db: conn}
}

func (s *IdentityStore) FindIdentity(ctx context.Context, id int64) (*types.Identity, error) {
	var (
		ident       types.Identity
		position    sql.NullString
		createdAtMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, position, created_at_ms
FROM employees WHERE id = ?;`, id,
	).Scan(&ident.ID, &ident.Name, &position, &createdAtMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindIdentity %d: %w", id, err)
	}

	ident.Position = position.String
	ident.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	return &ident, nil
}

func (s *IdentityStore) FindActiveSchedules(ctx context.Context, employeeID int64, dayOfWeek int) ([]types.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, employee_id, day_of_week, start_minute, end_minute
FROM access_schedules
WHERE employee_id = ? AND day_of_week = ? AND is_active = 1
ORDER BY start_minute;`, employeeID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("FindActiveSchedules %d/%d: %w", employeeID, dayOfWeek, err)
	}
	defer rows.Close()

	var out []types.Schedule
	for rows.Next() {
		sc := types.Schedule{Active: true}
		if err := rows.Scan(&sc.ID, &sc.EmployeeID, &sc.DayOfWeek, &sc.StartMinute, &sc.EndMinute); err != nil {
			return nil, fmt.Errorf("FindActiveSchedules scan: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindActiveSchedules rows: %w", err)
	}
	return out, nil
}

var _ store.IdentityStore = (*IdentityStore)(nil)
