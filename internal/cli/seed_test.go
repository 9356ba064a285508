package cli

import (
	"context"
	"path/filepath"
	"testing"

	"dorm2mcp/internal/seed"
	"dorm2mcp/internal/store"
)

func TestSeedDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dormitory.db")

	summary, err := seedDatabase(context.Background(), dbPath, seed.Options{}, 42)
	if err != nil {
		t.Fatalf("seedDatabase: %v", err)
	}
	if summary.Rooms != 15 {
		t.Fatalf("expected 15 rooms, got %d", summary.Rooms)
	}
	if summary.Students != 40 {
		t.Fatalf("expected 40 students, got %d", summary.Students)
	}
	if summary.CheckedOut != 12 {
		t.Fatalf("expected 12 checked out, got %d", summary.CheckedOut)
	}
	if summary.Maintenance != 15 {
		t.Fatalf("expected 15 maintenance requests, got %d", summary.Maintenance)
	}
}

func TestSeedDatabaseCustomShape(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dormitory.db")

	opts := seed.Options{Floors: 1, RoomsPerFloor: 5, Capacity: 4, Students: 10, CheckedOut: 2, Maintenance: 3}
	summary, err := seedDatabase(context.Background(), dbPath, opts, 7)
	if err != nil {
		t.Fatalf("seedDatabase: %v", err)
	}
	if summary.Rooms != 5 {
		t.Fatalf("expected 5 rooms, got %d", summary.Rooms)
	}
	if summary.Students != 10 || summary.CheckedOut != 2 {
		t.Fatalf("unexpected student counts: %+v", summary)
	}
	if summary.Maintenance != 3 {
		t.Fatalf("expected 3 maintenance requests, got %d", summary.Maintenance)
	}
}

// Re-running seed against an existing database must resolve the
// already-inserted rooms to their real ids, not pile every new record
// onto whatever rowid the connection saw last.
func TestSeedDatabaseTwiceKeepsRoomMapping(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "dormitory.db")

	opts := seed.Options{Floors: 1, RoomsPerFloor: 3, Capacity: 4, Students: 6, CheckedOut: 0, Maintenance: 2}
	for i := 0; i < 2; i++ {
		if _, err := seedDatabase(ctx, dbPath, opts, 7); err != nil {
			t.Fatalf("seedDatabase run %d: %v", i+1, err)
		}
	}

	db := store.NewSQLiteStore(dbPath)
	defer func() { _ = db.Close() }()

	rooms, err := db.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms after re-seed, got %d", len(rooms))
	}

	orphans, err := db.RunReadOnlyQuery(ctx,
		`SELECT COUNT(*) FROM occupancy WHERE room_id NOT IN (SELECT room_id FROM rooms)`)
	if err != nil {
		t.Fatalf("orphan query: %v", err)
	}
	if got := orphans.Rows[0][0]; got != "0" {
		t.Errorf("%s occupancy rows reference rooms that do not exist", got)
	}

	spread, err := db.RunReadOnlyQuery(ctx, `SELECT COUNT(DISTINCT room_id) FROM occupancy`)
	if err != nil {
		t.Fatalf("spread query: %v", err)
	}
	if got := spread.Rows[0][0]; got == "0" || got == "1" {
		t.Errorf("occupancy collapsed onto %s room(s) after re-seed", got)
	}
}
