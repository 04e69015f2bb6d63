package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a starter identity with a weekday 09:00-17:00 schedule so
// a fresh dev database can grant something.  Idempotent.
func SeedDev(ctx context.Context, conn *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO employees(id, name, position, created_at_ms)
VALUES (1, 'Hassen', 'Engineer', ?);`, now); err != nil {
		return fmt.Errorf("seed employee: %w", err)
	}

	var count int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_schedules WHERE employee_id = 1;`,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("seed schedules count: %w", err)
	}
	if count > 0 {
		return nil
	}

	for day := 0; day <= 4; day++ { // Monday..Friday
		if _, err := conn.ExecContext(ctx, `
INSERT INTO access_schedules(employee_id, day_of_week, start_minute, end_minute, is_active)
VALUES (1, ?, 540, 1020, 1);`, day); err != nil {
			return fmt.Errorf("seed schedule day %d: %w", day, err)
		}
	}
	return nil
}
