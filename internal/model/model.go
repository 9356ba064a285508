package model

import "context"

// Room is one dormitory room. (floor, room_number) is unique.
type Room struct {
	RoomID     int64
	Floor      int
	RoomNumber string
	Capacity   int
}

// Student statuses.
const (
	StudentActive     = "Active"
	StudentCheckedOut = "Checked Out"
)

// Student is keyed by an external code such as "STU2023001".
type Student struct {
	StudentID        string
	Name             string
	Gender           string
	Program          string
	ContactNumber    string
	EmergencyContact string
	Status           string
}

// Occupancy links a student to a room. A nil CheckOutDate means the
// student currently resides in the room.
type Occupancy struct {
	OccupancyID  int64
	StudentID    string
	RoomID       int64
	CheckInDate  string
	CheckOutDate *string
}

// Open reports whether the record represents a current occupant.
func (o Occupancy) Open() bool {
	return o.CheckOutDate == nil
}

// Maintenance request statuses. ResolvedDate is set iff the status is
// MaintenanceResolved.
const (
	MaintenancePending    = "Pending"
	MaintenanceInProgress = "In Progress"
	MaintenanceResolved   = "Resolved"
)

type MaintenanceRequest struct {
	RequestID        int64
	RoomID           int64
	IssueDescription string
	ReportedDate     string
	Status           string
	ResolvedDate     *string
}

// RoomOccupancy is one row of the per-room occupancy summary.
type RoomOccupancy struct {
	Floor      int
	RoomNumber string
	Occupied   int
	Capacity   int
}

// RoomAvailability extends the summary with remaining beds.
type RoomAvailability struct {
	Floor      int
	RoomNumber string
	Capacity   int
	Occupied   int
	Available  int
}

// StudentMatch is a find_student result: the student plus the current
// room, if any.
type StudentMatch struct {
	Student
	Floor      *int
	RoomNumber *string
}

// RoomOccupant is one current occupant of a room.
type RoomOccupant struct {
	StudentID   string
	Name        string
	Program     string
	CheckInDate string
}

// MaintenanceRow is a maintenance request joined with its room location.
type MaintenanceRow struct {
	RequestID        int64
	Floor            int
	RoomNumber       string
	IssueDescription string
	Status           string
	ReportedDate     string
}

// OccupancyDetail is an occupancy record joined with student and room,
// used when rendering rows for the vector snapshot.
type OccupancyDetail struct {
	Occupancy
	StudentName string
	Floor       int
	RoomNumber  string
}

// MaintenanceDetail is a maintenance request joined with its room,
// used when rendering rows for the vector snapshot.
type MaintenanceDetail struct {
	MaintenanceRequest
	Floor      int
	RoomNumber string
}

// MonthlyCheckIns is one monthly occupancy bucket ("2025-03" style key).
type MonthlyCheckIns struct {
	Month string
	Count int
}

// ChatMessage is one turn entry sent to the chat endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryResult holds the rows of an ad hoc read-only query.
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

// Index is the interface a vector sub-index satisfies.
type Index interface {
	Add(label uint64, vector []float32) error
	Search(vector []float32, k int) ([]uint64, []float32, error)
	Count() int
}

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a chat completion for a message list.
type Generator interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}
