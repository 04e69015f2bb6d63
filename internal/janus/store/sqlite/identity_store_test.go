package sqlite_test

import (
	"context"
	"testing"

	sqlitestore "github.com/hzouari/janus/internal/janus/store/sqlite"
)

// ═══════════════════════════════════════════════════════════════════════════
// FindIdentity
// ═══════════════════════════════════════════════════════════════════════════

func TestIdentityStore_FindIdentity_Found(t *testing.T) {
	conn := openTestDB(t)
	seedEmployee(t, conn, 7, "Zied")
	is := sqlitestore.NewIdentityStore(conn)

	ident, err := is.FindIdentity(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindIdentity: %v", err)
	}
	if ident == nil {
		t.Fatal("expected identity, got nil")
	}
	if ident.ID != 7 || ident.Name != "Zied" {
		t.Errorf("unexpected identity: %+v", ident)
	}
	if ident.Position != "Tester" {
		t.Errorf("expected position=Tester, got %q", ident.Position)
	}
}

func TestIdentityStore_FindIdentity_Missing(t *testing.T) {
	conn := openTestDB(t)
	is := sqlitestore.NewIdentityStore(conn)

	ident, err := is.FindIdentity(context.Background(), 99)
	if err != nil {
		t.Fatalf("FindIdentity: %v", err)
	}
	if ident != nil {
		t.Errorf("expected nil for missing identity, got %+v", ident)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// FindActiveSchedules
// ═══════════════════════════════════════════════════════════════════════════

func TestIdentityStore_FindActiveSchedules_FiltersDayAndActive(t *testing.T) {
	conn := openTestDB(t)
	seedEmployee(t, conn, 1, "Hassen")
	seedSchedule(t, conn, 1, 0, 540, 1020, true)   // Monday, active
	seedSchedule(t, conn, 1, 0, 1080, 1200, false) // Monday, inactive
	seedSchedule(t, conn, 1, 5, 540, 1020, true)   // Saturday, active
	is := sqlitestore.NewIdentityStore(conn)

	scs, err := is.FindActiveSchedules(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("FindActiveSchedules: %v", err)
	}
	if len(scs) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(scs))
	}
	if scs[0].StartMinute != 540 || scs[0].EndMinute != 1020 {
		t.Errorf("unexpected window: %+v", scs[0])
	}
	if !scs[0].Active {
		t.Error("expected Active=true")
	}
}

func TestIdentityStore_FindActiveSchedules_MultiplePerDay(t *testing.T) {
	conn := openTestDB(t)
	seedEmployee(t, conn, 1, "Hassen")
	seedSchedule(t, conn, 1, 2, 480, 720, true)
	seedSchedule(t, conn, 1, 2, 780, 1080, true)
	is := sqlitestore.NewIdentityStore(conn)

	scs, err := is.FindActiveSchedules(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("FindActiveSchedules: %v", err)
	}
	if len(scs) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(scs))
	}
	// Ordered by start time.
	if scs[0].StartMinute != 480 || scs[1].StartMinute != 780 {
		t.Errorf("unexpected order: %+v", scs)
	}
}

func TestIdentityStore_FindActiveSchedules_NoneForDay(t *testing.T) {
	conn := openTestDB(t)
	seedEmployee(t, conn, 1, "Hassen")
	seedSchedule(t, conn, 1, 0, 540, 1020, true)
	is := sqlitestore.NewIdentityStore(conn)

	scs, err := is.FindActiveSchedules(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("FindActiveSchedules: %v", err)
	}
	if len(scs) != 0 {
		t.Errorf("expected no schedules for Saturday, got %d", len(scs))
	}
}
