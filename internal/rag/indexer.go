// Package rag implements the retrieval side of the dormitory chat:
// a one-time snapshot of the database embedded into five vector
// sub-indexes, and the query path that gathers context from them.
package rag

import (
	"context"
	"fmt"
	"log"

	"dorm2mcp/internal/model"
)

// Store is the slice of the database the snapshot is built from.
type Store interface {
	SchemaStatements(ctx context.Context) ([]string, error)
	ListStudents(ctx context.Context) ([]model.Student, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	OccupancyDetails(ctx context.Context) ([]model.OccupancyDetail, error)
	MaintenanceDetails(ctx context.Context) ([]model.MaintenanceDetail, error)
}

// Document is one embedded text chunk. The label of the vector in the
// sub-index is the document's position.
type Document struct {
	ID   string
	Text string
}

type subIndex struct {
	name  string
	index model.Index
	docs  []Document
}

// Snapshot holds the five sub-indexes in their fixed query order:
// students, rooms, occupancy, maintenance, schema. It is built once at
// startup and never refreshed; rows written after the build are not
// retrievable until the next run.
type Snapshot struct {
	indexes []subIndex
	logger  *log.Logger
}

// BuildSnapshot reads the database and embeds every row into its
// sub-index. newIndex supplies one empty index per document type.
func BuildSnapshot(ctx context.Context, st Store, embedder model.Embedder, newIndex func() model.Index, logger *log.Logger) (*Snapshot, error) {
	students, err := st.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	studentDocs := make([]Document, 0, len(students))
	for _, s := range students {
		studentDocs = append(studentDocs, Document{
			ID:   "student_" + s.StudentID,
			Text: fmt.Sprintf("Student ID: %s, Name: %s, Gender: %s, Program: %s, Status: %s", s.StudentID, s.Name, s.Gender, s.Program, s.Status),
		})
	}

	rooms, err := st.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	roomDocs := make([]Document, 0, len(rooms))
	for _, r := range rooms {
		roomDocs = append(roomDocs, Document{
			ID:   fmt.Sprintf("room_%d", r.RoomID),
			Text: fmt.Sprintf("Room ID: %d, Floor: %d, Room Number: %s, Capacity: %d", r.RoomID, r.Floor, r.RoomNumber, r.Capacity),
		})
	}

	occupancies, err := st.OccupancyDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing occupancy: %w", err)
	}
	occupancyDocs := make([]Document, 0, len(occupancies))
	for _, o := range occupancies {
		status := "currently residing"
		if !o.Open() {
			status = fmt.Sprintf("checked out on %s", *o.CheckOutDate)
		}
		occupancyDocs = append(occupancyDocs, Document{
			ID:   fmt.Sprintf("occupancy_%d", o.OccupancyID),
			Text: fmt.Sprintf("Student %s (ID: %s) checked in to Room %s on Floor %d on %s and is %s.", o.StudentName, o.StudentID, o.RoomNumber, o.Floor, o.CheckInDate, status),
		})
	}

	maintenance, err := st.MaintenanceDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing maintenance: %w", err)
	}
	maintenanceDocs := make([]Document, 0, len(maintenance))
	for _, m := range maintenance {
		status := fmt.Sprintf("status: %s", m.Status)
		if m.ResolvedDate != nil {
			status = fmt.Sprintf("resolved on %s", *m.ResolvedDate)
		}
		maintenanceDocs = append(maintenanceDocs, Document{
			ID:   fmt.Sprintf("maintenance_%d", m.RequestID),
			Text: fmt.Sprintf("Maintenance request #%d for Room %s on Floor %d: %s. Reported on %s, %s.", m.RequestID, m.RoomNumber, m.Floor, m.IssueDescription, m.ReportedDate, status),
		})
	}

	statements, err := st.SchemaStatements(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	schemaDocs := make([]Document, 0, len(statements))
	for i, stmt := range statements {
		schemaDocs = append(schemaDocs, Document{
			ID:   fmt.Sprintf("schema_%d", i),
			Text: stmt,
		})
	}

	snap := &Snapshot{logger: logger}
	for _, group := range []struct {
		name string
		docs []Document
	}{
		{"students", studentDocs},
		{"rooms", roomDocs},
		{"occupancy", occupancyDocs},
		{"maintenance", maintenanceDocs},
		{"schema", schemaDocs},
	} {
		idx := newIndex()
		for label, doc := range group.docs {
			vec, err := embedder.Embed(ctx, doc.Text)
			if err != nil {
				return nil, fmt.Errorf("embedding %s: %w", doc.ID, err)
			}
			if err := idx.Add(uint64(label), vec); err != nil {
				return nil, fmt.Errorf("indexing %s: %w", doc.ID, err)
			}
		}
		snap.indexes = append(snap.indexes, subIndex{name: group.name, index: idx, docs: group.docs})
	}
	return snap, nil
}

// Query gathers up to min(k, count) documents from each sub-index in
// order, then truncates the combined list to k. A failing sub-index is
// logged and skipped so one bad query never empties the context.
func (s *Snapshot) Query(ctx context.Context, embedder model.Embedder, query string, k int) []string {
	if k <= 0 {
		return nil
	}

	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		s.logf("error embedding query: %v", err)
		return nil
	}

	var results []string
	for _, sub := range s.indexes {
		n := min(k, sub.index.Count())
		if n == 0 {
			continue
		}
		labels, _, err := sub.index.Search(vec, n)
		if err != nil {
			s.logf("error querying %s index: %v", sub.name, err)
			continue
		}
		for _, label := range labels {
			results = append(results, sub.docs[label].Text)
		}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Size returns the total number of indexed documents.
func (s *Snapshot) Size() int {
	total := 0
	for _, sub := range s.indexes {
		total += sub.index.Count()
	}
	return total
}

func (s *Snapshot) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
