// Package seed synthesizes the sample dormitory dataset: rooms over
// three floors, students, occupancy records that respect room capacity,
// and maintenance requests.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"dorm2mcp/internal/model"
)

// Options controls how much data is generated. The zero value is
// replaced by the defaults the dataset has always shipped with.
type Options struct {
	Floors        int
	RoomsPerFloor int
	Capacity      int
	Students      int
	CheckedOut    int
	Maintenance   int
	Now           time.Time
}

func (o Options) withDefaults() Options {
	if o.Floors <= 0 {
		o.Floors = 3
	}
	if o.RoomsPerFloor <= 0 {
		o.RoomsPerFloor = 5
	}
	if o.Capacity <= 0 {
		o.Capacity = 4
	}
	if o.Students <= 0 {
		o.Students = 40
	}
	if o.CheckedOut < 0 {
		o.CheckedOut = 0
	}
	if o.CheckedOut == 0 && o.Students == 40 {
		o.CheckedOut = 12
	}
	if o.Maintenance <= 0 {
		o.Maintenance = 15
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

var programs = []string{
	"Computer Science", "Engineering", "Business", "Medicine", "Arts",
	"Biology", "Physics", "Chemistry", "Mathematics", "Psychology",
}

var genders = []string{"Male", "Female"}

var firstNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Quinn", "Jamie", "Avery", "Skyler",
	"Aiden", "Emma", "Olivia", "Noah", "Liam", "Sophia", "Isabella", "Mia", "Charlotte", "Amelia",
	"Harper", "Evelyn", "Abigail", "Emily", "Michael", "Ethan", "Daniel", "Matthew", "James", "Benjamin",
	"Elijah", "Lucas", "Mason", "Logan", "Alexander", "William", "Jacob", "Samuel", "Henry", "David",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
	"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
	"Walker", "Young", "Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

var maintenanceIssues = []string{
	"Broken light fixture", "Leaking faucet", "Clogged toilet", "Faulty air conditioner",
	"Damaged furniture", "Pest control needed", "Window won't close", "Door lock issue",
	"Ceiling fan not working", "Electrical outlet not working", "Heating issue", "Water damage",
}

var maintenanceStatuses = []string{
	model.MaintenancePending, model.MaintenanceInProgress, model.MaintenanceResolved,
}

// Generator builds sample data from an injected random source so tests
// stay deterministic.
type Generator struct {
	rng  *rand.Rand
	opts Options
}

func NewGenerator(rng *rand.Rand, opts Options) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, opts: opts.withDefaults()}
}

// Dataset holds one generated snapshot before insertion. Occupancy and
// maintenance reference rooms by index into Rooms because room_ids are
// assigned by the store on insert.
type Dataset struct {
	Rooms       []model.Room
	Students    []model.Student
	Occupancy   []occupancyRecord
	Maintenance []maintenanceRecord
}

type occupancyRecord struct {
	StudentID    string
	RoomIndex    int
	CheckInDate  string
	CheckOutDate *string
}

type maintenanceRecord struct {
	RoomIndex        int
	IssueDescription string
	ReportedDate     string
	Status           string
	ResolvedDate     *string
}

func (g *Generator) Generate() Dataset {
	var ds Dataset

	for floor := 1; floor <= g.opts.Floors; floor++ {
		for n := 1; n <= g.opts.RoomsPerFloor; n++ {
			ds.Rooms = append(ds.Rooms, model.Room{
				Floor:      floor,
				RoomNumber: fmt.Sprintf("%d0%d", floor, n),
				Capacity:   g.opts.Capacity,
			})
		}
	}

	for i := 1; i <= g.opts.Students; i++ {
		status := model.StudentActive
		if i <= g.opts.CheckedOut {
			status = model.StudentCheckedOut
		}
		ds.Students = append(ds.Students, model.Student{
			StudentID:        fmt.Sprintf("STU%07d", 2023000+i),
			Name:             g.pick(firstNames) + " " + g.pick(lastNames),
			Gender:           g.pick(genders),
			Program:          g.pick(programs),
			ContactNumber:    fmt.Sprintf("+1-555-%04d", 1000+g.rng.Intn(9000)),
			EmergencyContact: fmt.Sprintf("+1-555-%04d", 1000+g.rng.Intn(9000)),
			Status:           status,
		})
	}

	// Assign students to rooms without ever exceeding capacity. Checked
	// out students still free their bed, but the historical record keeps
	// the open-count invariant simple: count every assignment against
	// capacity so no room ends up over-subscribed even transiently.
	occupied := make([]int, len(ds.Rooms))
	for _, student := range ds.Students {
		available := make([]int, 0, len(ds.Rooms))
		for idx := range ds.Rooms {
			if occupied[idx] < ds.Rooms[idx].Capacity {
				available = append(available, idx)
			}
		}
		if len(available) == 0 {
			break
		}
		roomIdx := available[g.rng.Intn(len(available))]
		occupied[roomIdx]++

		daysAgo := 30 + g.rng.Intn(151)
		checkIn := g.opts.Now.AddDate(0, 0, -daysAgo)

		var checkOut *string
		if student.Status == model.StudentCheckedOut {
			daysAfter := 30 + g.rng.Intn(maxInt(daysAgo-30, 0)+1)
			v := g.opts.Now.AddDate(0, 0, -(daysAgo - daysAfter)).Format("2006-01-02")
			checkOut = &v
		}

		ds.Occupancy = append(ds.Occupancy, occupancyRecord{
			StudentID:    student.StudentID,
			RoomIndex:    roomIdx,
			CheckInDate:  checkIn.Format("2006-01-02"),
			CheckOutDate: checkOut,
		})
	}

	for i := 0; i < g.opts.Maintenance; i++ {
		daysAgo := 1 + g.rng.Intn(60)
		status := g.pick(maintenanceStatuses)

		var resolved *string
		if status == model.MaintenanceResolved {
			daysAfter := 1 + g.rng.Intn(minInt(daysAgo, 14))
			v := g.opts.Now.AddDate(0, 0, -(daysAgo - daysAfter)).Format("2006-01-02")
			resolved = &v
		}

		ds.Maintenance = append(ds.Maintenance, maintenanceRecord{
			RoomIndex:        g.rng.Intn(len(ds.Rooms)),
			IssueDescription: g.pick(maintenanceIssues),
			ReportedDate:     g.opts.Now.AddDate(0, 0, -daysAgo).Format("2006-01-02"),
			Status:           status,
			ResolvedDate:     resolved,
		})
	}

	return ds
}

// Store is the subset of the SQLite store Apply needs.
type Store interface {
	InsertRoom(ctx context.Context, room model.Room) (int64, error)
	InsertStudent(ctx context.Context, student model.Student) error
	InsertOccupancy(ctx context.Context, occ model.Occupancy) (int64, error)
	InsertMaintenance(ctx context.Context, req model.MaintenanceRequest) (int64, error)
}

// Apply inserts a generated dataset into the store.
func (g *Generator) Apply(ctx context.Context, st Store) error {
	ds := g.Generate()
	return Apply(ctx, st, ds)
}

func Apply(ctx context.Context, st Store, ds Dataset) error {
	roomIDs := make([]int64, len(ds.Rooms))
	for i, room := range ds.Rooms {
		id, err := st.InsertRoom(ctx, room)
		if err != nil {
			return fmt.Errorf("insert room %s: %w", room.RoomNumber, err)
		}
		roomIDs[i] = id
	}

	for _, student := range ds.Students {
		if err := st.InsertStudent(ctx, student); err != nil {
			return fmt.Errorf("insert student %s: %w", student.StudentID, err)
		}
	}

	for _, occ := range ds.Occupancy {
		_, err := st.InsertOccupancy(ctx, model.Occupancy{
			StudentID:    occ.StudentID,
			RoomID:       roomIDs[occ.RoomIndex],
			CheckInDate:  occ.CheckInDate,
			CheckOutDate: occ.CheckOutDate,
		})
		if err != nil {
			return fmt.Errorf("insert occupancy for %s: %w", occ.StudentID, err)
		}
	}

	for _, req := range ds.Maintenance {
		_, err := st.InsertMaintenance(ctx, model.MaintenanceRequest{
			RoomID:           roomIDs[req.RoomIndex],
			IssueDescription: req.IssueDescription,
			ReportedDate:     req.ReportedDate,
			Status:           req.Status,
			ResolvedDate:     req.ResolvedDate,
		})
		if err != nil {
			return fmt.Errorf("insert maintenance request: %w", err)
		}
	}

	return nil
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
