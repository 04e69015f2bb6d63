package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hzouari/janus/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production.  The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each call gets a unique in-memory database.  The shared-cache URI
	// keeps the database alive for the lifetime of the connection pool.
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	// Match production: single connection for SQLite safety.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn, closed when the test
// finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

// seedEmployee inserts an employee row.
func seedEmployee(t *testing.T, conn *sql.DB, id int64, name string) {
	t.Helper()
	nowMs := time.Now().UTC().UnixMilli()
	_, err := conn.ExecContext(context.Background(), `
INSERT INTO employees(id, name, position, created_at_ms)
VALUES (?, ?, 'Tester', ?);`, id, name, nowMs)
	if err != nil {
		t.Fatalf("seedEmployee(%d): %v", id, err)
	}
}

// seedSchedule inserts one schedule row for an employee.
func seedSchedule(t *testing.T, conn *sql.DB, employeeID int64, day, startMin, endMin int, active bool) {
	t.Helper()
	act := 0
	if active {
		act = 1
	}
	_, err := conn.ExecContext(context.Background(), `
INSERT INTO access_schedules(employee_id, day_of_week, start_minute, end_minute, is_active)
VALUES (?, ?, ?, ?, ?);`, employeeID, day, startMin, endMin, act)
	if err != nil {
		t.Fatalf("seedSchedule(%d): %v", employeeID, err)
	}
}
