package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"dorm2mcp/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st := NewSQLiteStore(filepath.Join(t.TempDir(), "dormitory.db"))
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return st
}

func mustInsertRoom(t *testing.T, st *SQLiteStore, floor int, number string, capacity int) int64 {
	t.Helper()
	id, err := st.InsertRoom(context.Background(), model.Room{Floor: floor, RoomNumber: number, Capacity: capacity})
	if err != nil {
		t.Fatalf("InsertRoom(%d, %s) failed: %v", floor, number, err)
	}
	return id
}

func mustInsertStudent(t *testing.T, st *SQLiteStore, id, name, status string) {
	t.Helper()
	err := st.InsertStudent(context.Background(), model.Student{
		StudentID: id,
		Name:      name,
		Gender:    "Female",
		Program:   "Computer Science",
		Status:    status,
	})
	if err != nil {
		t.Fatalf("InsertStudent(%s) failed: %v", id, err)
	}
}

func TestSQLiteStore_SchemaListsAllTables(t *testing.T) {
	st := newTestStore(t)

	schema, err := st.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	// sqlite_master records DDL without the IF NOT EXISTS clause.
	for _, table := range []string{"rooms", "students", "occupancy", "maintenance"} {
		if !strings.Contains(schema, "CREATE TABLE "+table) {
			t.Errorf("schema missing table %q:\n%s", table, schema)
		}
	}
}

func TestInsertRoom_ExistingRoomKeepsID(t *testing.T) {
	st := newTestStore(t)

	first := mustInsertRoom(t, st, 1, "101", 4)
	other := mustInsertRoom(t, st, 1, "102", 4)
	if first == other {
		t.Fatalf("distinct rooms share id %d", first)
	}

	// Re-inserting an existing room must resolve to its original id,
	// not the connection's last rowid.
	again := mustInsertRoom(t, st, 1, "101", 4)
	if again != first {
		t.Errorf("re-insert of room 101 returned id %d, want %d", again, first)
	}

	rooms, err := st.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 2 {
		t.Errorf("expected 2 rooms after re-insert, got %d", len(rooms))
	}
}

func TestFindStudent_SingleExactIDMatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	roomID := mustInsertRoom(t, st, 2, "201", 4)
	mustInsertStudent(t, st, "STU202301", "Avery Chen", model.StudentActive)
	mustInsertStudent(t, st, "STU999999", "Jordan Park", model.StudentActive)
	if _, err := st.InsertOccupancy(ctx, model.Occupancy{StudentID: "STU202301", RoomID: roomID, CheckInDate: "2026-01-15"}); err != nil {
		t.Fatalf("InsertOccupancy failed: %v", err)
	}

	matches, err := st.FindStudent(ctx, "STU202301")
	if err != nil {
		t.Fatalf("FindStudent failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one match, got %#v", matches)
	}
	m := matches[0]
	if m.StudentID != "STU202301" || m.Name != "Avery Chen" {
		t.Fatalf("unexpected match: %#v", m)
	}
	if m.Floor == nil || *m.Floor != 2 || m.RoomNumber == nil || *m.RoomNumber != "201" {
		t.Fatalf("expected current room 201 on floor 2, got %#v", m)
	}
}

func TestFindStudent_CaseSensitiveSubstring(t *testing.T) {
	st := newTestStore(t)
	mustInsertStudent(t, st, "STU202301", "Avery Chen", model.StudentActive)

	matches, err := st.FindStudent(context.Background(), "stu202301")
	if err != nil {
		t.Fatalf("FindStudent failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("lower-cased term must not match, got %#v", matches)
	}
}

func TestRoomOccupants_EmptyRoom(t *testing.T) {
	st := newTestStore(t)
	mustInsertRoom(t, st, 2, "201", 4)

	occupants, err := st.RoomOccupants(context.Background(), 2, "201")
	if err != nil {
		t.Fatalf("RoomOccupants failed: %v", err)
	}
	if len(occupants) != 0 {
		t.Fatalf("expected no occupants, got %#v", occupants)
	}
}

func TestRoomOccupants_SkipsCheckedOut(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	roomID := mustInsertRoom(t, st, 1, "101", 4)
	mustInsertStudent(t, st, "STU2023001", "Riley Flores", model.StudentActive)
	mustInsertStudent(t, st, "STU2023002", "Casey Young", model.StudentCheckedOut)
	if _, err := st.InsertOccupancy(ctx, model.Occupancy{StudentID: "STU2023001", RoomID: roomID, CheckInDate: "2026-02-01"}); err != nil {
		t.Fatalf("InsertOccupancy failed: %v", err)
	}
	out := "2026-03-01"
	if _, err := st.InsertOccupancy(ctx, model.Occupancy{StudentID: "STU2023002", RoomID: roomID, CheckInDate: "2026-02-01", CheckOutDate: &out}); err != nil {
		t.Fatalf("InsertOccupancy failed: %v", err)
	}

	occupants, err := st.RoomOccupants(ctx, 1, "101")
	if err != nil {
		t.Fatalf("RoomOccupants failed: %v", err)
	}
	if len(occupants) != 1 || occupants[0].StudentID != "STU2023001" {
		t.Fatalf("expected only the open record, got %#v", occupants)
	}
}

func TestUpdateRoomCapacity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	roomID := mustInsertRoom(t, st, 3, "301", 4)

	if err := st.UpdateRoomCapacity(ctx, roomID+100, 5); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown room, got %v", err)
	}

	if err := st.UpdateRoomCapacity(ctx, roomID, 6); err != nil {
		t.Fatalf("UpdateRoomCapacity failed: %v", err)
	}
	rooms, err := st.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Capacity != 6 {
		t.Fatalf("capacity update not persisted: %#v", rooms)
	}
}

func TestRunReadOnlyQuery(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	res, err := st.RunReadOnlyQuery(ctx, "SELECT 1 AS one")
	if err != nil {
		t.Fatalf("RunReadOnlyQuery failed: %v", err)
	}
	if len(res.Columns) != 1 || res.Columns[0] != "one" {
		t.Fatalf("unexpected columns: %#v", res.Columns)
	}
	if len(res.Rows) != 1 || res.Rows[0][0] != "1" {
		t.Fatalf("unexpected rows: %#v", res.Rows)
	}

	if _, err := st.RunReadOnlyQuery(ctx, "SELECT * FROM no_such_table"); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestMonthlyCheckIns_BucketsByMonth(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	roomID := mustInsertRoom(t, st, 1, "101", 8)

	checkIns := []string{"2026-05-03", "2026-05-20", "2026-06-14", "2026-07-01", "2026-07-02", "2026-07-30"}
	for i, date := range checkIns {
		id := fmt.Sprintf("STU20230%02d", i+1)
		mustInsertStudent(t, st, id, "Student "+id, model.StudentActive)
		if _, err := st.InsertOccupancy(ctx, model.Occupancy{StudentID: id, RoomID: roomID, CheckInDate: date}); err != nil {
			t.Fatalf("InsertOccupancy failed: %v", err)
		}
	}

	buckets, err := st.MonthlyCheckIns(ctx)
	if err != nil {
		t.Fatalf("MonthlyCheckIns failed: %v", err)
	}
	want := []model.MonthlyCheckIns{
		{Month: "2026-05", Count: 2},
		{Month: "2026-06", Count: 1},
		{Month: "2026-07", Count: 3},
	}
	if len(buckets) != len(want) {
		t.Fatalf("unexpected buckets: %#v", buckets)
	}
	for i, b := range buckets {
		if b != want[i] {
			t.Errorf("bucket %d: got %#v want %#v", i, b, want[i])
		}
	}
}

func TestOccupancySummary_OrderedByFloorThenRoom(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mustInsertRoom(t, st, 2, "202", 4)
	mustInsertRoom(t, st, 1, "101", 4)
	mustInsertRoom(t, st, 2, "201", 4)

	summary, err := st.OccupancySummary(ctx)
	if err != nil {
		t.Fatalf("OccupancySummary failed: %v", err)
	}
	if len(summary) != 3 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	want := []string{"101", "201", "202"}
	for i := range want {
		if summary[i].RoomNumber != want[i] {
			t.Fatalf("unexpected order: %#v", summary)
		}
	}
}
