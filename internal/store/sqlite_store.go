package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"dorm2mcp/internal/model"
)

type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS rooms (
  room_id INTEGER PRIMARY KEY,
  floor INTEGER NOT NULL,
  room_number TEXT NOT NULL,
  capacity INTEGER DEFAULT 4,
  UNIQUE(floor, room_number)
);

CREATE TABLE IF NOT EXISTS students (
  student_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  gender TEXT NOT NULL,
  program TEXT NOT NULL,
  contact_number TEXT,
  emergency_contact TEXT,
  status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS occupancy (
  occupancy_id INTEGER PRIMARY KEY,
  student_id TEXT NOT NULL,
  room_id INTEGER NOT NULL,
  check_in_date DATE NOT NULL,
  check_out_date DATE,
  FOREIGN KEY (student_id) REFERENCES students(student_id),
  FOREIGN KEY (room_id) REFERENCES rooms(room_id)
);

CREATE TABLE IF NOT EXISTS maintenance (
  request_id INTEGER PRIMARY KEY,
  room_id INTEGER NOT NULL,
  issue_description TEXT NOT NULL,
  reported_date DATE NOT NULL,
  status TEXT NOT NULL,
  resolved_date DATE,
  FOREIGN KEY (room_id) REFERENCES rooms(room_id)
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Schema returns the CREATE TABLE text of every user table, read back
// verbatim from the sqlite_master catalog.
func (s *SQLiteStore) Schema(ctx context.Context) (string, error) {
	parts, err := s.SchemaStatements(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, "\n\n"), nil
}

// SchemaStatements returns the CREATE TABLE statement of each table.
func (s *SQLiteStore) SchemaStatements(ctx context.Context) ([]string, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	parts := make([]string, 0, 4)
	for rows.Next() {
		var stmt sql.NullString
		if err := rows.Scan(&stmt); err != nil {
			return nil, err
		}
		if stmt.Valid && strings.TrimSpace(stmt.String) != "" {
			parts = append(parts, stmt.String)
		}
	}
	return parts, rows.Err()
}

func (s *SQLiteStore) InsertRoom(ctx context.Context, room model.Room) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO rooms(floor, room_number, capacity) VALUES(?, ?, ?)`,
		room.Floor, room.RoomNumber, room.Capacity,
	)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		return res.LastInsertId()
	}

	// The row already existed and the insert was ignored; LastInsertId
	// would report the connection's previous rowid. Resolve the id
	// through the (floor, room_number) unique key instead.
	var id int64
	err = db.QueryRowContext(
		ctx,
		`SELECT room_id FROM rooms WHERE floor = ? AND room_number = ?`,
		room.Floor, room.RoomNumber,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) InsertStudent(ctx context.Context, student model.Student) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO students(student_id, name, gender, program, contact_number, emergency_contact, status)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		student.StudentID, student.Name, student.Gender, student.Program,
		student.ContactNumber, student.EmergencyContact, student.Status,
	)
	return err
}

func (s *SQLiteStore) InsertOccupancy(ctx context.Context, occ model.Occupancy) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(
		ctx,
		`INSERT INTO occupancy(student_id, room_id, check_in_date, check_out_date) VALUES(?, ?, ?, ?)`,
		occ.StudentID, occ.RoomID, occ.CheckInDate, nullableString(occ.CheckOutDate),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) InsertMaintenance(ctx context.Context, req model.MaintenanceRequest) (int64, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(
		ctx,
		`INSERT INTO maintenance(room_id, issue_description, reported_date, status, resolved_date)
		 VALUES(?, ?, ?, ?, ?)`,
		req.RoomID, req.IssueDescription, req.ReportedDate, req.Status, nullableString(req.ResolvedDate),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT room_id, floor, room_number, capacity FROM rooms ORDER BY room_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Room, 0, 16)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.RoomID, &room.Floor, &room.RoomNumber, &room.Capacity); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT student_id, name, gender, program, contact_number, emergency_contact, status
		 FROM students ORDER BY student_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Student, 0, 40)
	for rows.Next() {
		var (
			student   model.Student
			contact   sql.NullString
			emergency sql.NullString
		)
		if err := rows.Scan(
			&student.StudentID, &student.Name, &student.Gender, &student.Program,
			&contact, &emergency, &student.Status,
		); err != nil {
			return nil, err
		}
		student.ContactNumber = contact.String
		student.EmergencyContact = emergency.String
		out = append(out, student)
	}
	return out, rows.Err()
}

// OccupancySummary counts currently-open occupancy records per room,
// ordered by floor then room number.
func (s *SQLiteStore) OccupancySummary(ctx context.Context) ([]model.RoomOccupancy, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT r.floor, r.room_number, COUNT(o.student_id) AS occupied, r.capacity
		 FROM rooms r
		 LEFT JOIN occupancy o ON r.room_id = o.room_id AND o.check_out_date IS NULL
		 GROUP BY r.room_id
		 ORDER BY r.floor, r.room_number`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.RoomOccupancy, 0, 16)
	for rows.Next() {
		var row model.RoomOccupancy
		if err := rows.Scan(&row.Floor, &row.RoomNumber, &row.Occupied, &row.Capacity); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MaintenanceList returns every maintenance request joined with its room
// location, newest-reported first.
func (s *SQLiteStore) MaintenanceList(ctx context.Context) ([]model.MaintenanceRow, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT m.request_id, r.floor, r.room_number, m.issue_description, m.status, m.reported_date
		 FROM maintenance m
		 JOIN rooms r ON m.room_id = r.room_id
		 ORDER BY m.reported_date DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.MaintenanceRow, 0, 16)
	for rows.Next() {
		var row model.MaintenanceRow
		if err := rows.Scan(&row.RequestID, &row.Floor, &row.RoomNumber, &row.IssueDescription, &row.Status, &row.ReportedDate); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// FindStudent matches students whose id or name contains the search term.
// instr() keeps the match case-sensitive; LIKE would fold ASCII case.
func (s *SQLiteStore) FindStudent(ctx context.Context, searchTerm string) ([]model.StudentMatch, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT s.student_id, s.name, s.gender, s.program, s.contact_number, s.emergency_contact, s.status,
		        r.floor, r.room_number
		 FROM students s
		 LEFT JOIN occupancy o ON s.student_id = o.student_id AND o.check_out_date IS NULL
		 LEFT JOIN rooms r ON o.room_id = r.room_id
		 WHERE instr(s.student_id, ?) > 0 OR instr(s.name, ?) > 0`,
		searchTerm, searchTerm,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.StudentMatch, 0, 4)
	for rows.Next() {
		var (
			match      model.StudentMatch
			contact    sql.NullString
			emergency  sql.NullString
			floor      sql.NullInt64
			roomNumber sql.NullString
		)
		if err := rows.Scan(
			&match.StudentID, &match.Name, &match.Gender, &match.Program,
			&contact, &emergency, &match.Status, &floor, &roomNumber,
		); err != nil {
			return nil, err
		}
		match.ContactNumber = contact.String
		match.EmergencyContact = emergency.String
		if floor.Valid {
			f := int(floor.Int64)
			match.Floor = &f
		}
		if roomNumber.Valid {
			n := roomNumber.String
			match.RoomNumber = &n
		}
		out = append(out, match)
	}
	return out, rows.Err()
}

// RoomOccupants lists the current occupants of one room.
func (s *SQLiteStore) RoomOccupants(ctx context.Context, floor int, roomNumber string) ([]model.RoomOccupant, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT s.student_id, s.name, s.program, o.check_in_date
		 FROM students s
		 JOIN occupancy o ON s.student_id = o.student_id
		 JOIN rooms r ON o.room_id = r.room_id
		 WHERE r.floor = ? AND r.room_number = ? AND o.check_out_date IS NULL`,
		floor, roomNumber,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.RoomOccupant, 0, 4)
	for rows.Next() {
		var occ model.RoomOccupant
		if err := rows.Scan(&occ.StudentID, &occ.Name, &occ.Program, &occ.CheckInDate); err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, rows.Err()
}

// Availability reports occupied count and remaining beds per room.
func (s *SQLiteStore) Availability(ctx context.Context) ([]model.RoomAvailability, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT r.floor, r.room_number, r.capacity,
		        (SELECT COUNT(*) FROM occupancy o WHERE o.room_id = r.room_id AND o.check_out_date IS NULL) AS occupied,
		        r.capacity - (SELECT COUNT(*) FROM occupancy o WHERE o.room_id = r.room_id AND o.check_out_date IS NULL) AS available
		 FROM rooms r
		 ORDER BY r.floor, r.room_number`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.RoomAvailability, 0, 16)
	for rows.Next() {
		var row model.RoomAvailability
		if err := rows.Scan(&row.Floor, &row.RoomNumber, &row.Capacity, &row.Occupied, &row.Available); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MonthlyCheckIns buckets check-ins by calendar month over the trailing
// year, the input series for the occupancy forecast.
func (s *SQLiteStore) MonthlyCheckIns(ctx context.Context) ([]model.MonthlyCheckIns, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT strftime('%Y-%m', check_in_date) AS ym, COUNT(*) AS num
		 FROM occupancy
		 WHERE check_out_date IS NULL OR check_out_date > date('now', '-1 year')
		 GROUP BY ym ORDER BY ym`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.MonthlyCheckIns, 0, 12)
	for rows.Next() {
		var bucket model.MonthlyCheckIns
		if err := rows.Scan(&bucket.Month, &bucket.Count); err != nil {
			return nil, err
		}
		out = append(out, bucket)
	}
	return out, rows.Err()
}

// UpdateRoomCapacity is the single write exposed by the dispatcher.
// Returns model.ErrNotFound when no room matched.
func (s *SQLiteStore) UpdateRoomCapacity(ctx context.Context, roomID int64, capacity int) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `UPDATE rooms SET capacity = ? WHERE room_id = ?`, capacity, roomID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// RunReadOnlyQuery executes caller-supplied SELECT text. The keyword
// filter runs in the dispatcher before this is reached; here the text is
// handed to SQLite as-is and any execution error is returned.
func (s *SQLiteStore) RunReadOnlyQuery(ctx context.Context, sqlText string) (model.QueryResult, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.QueryResult{}, err
	}

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return model.QueryResult{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return model.QueryResult{}, err
	}

	result := model.QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return model.QueryResult{}, err
		}
		rendered := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				rendered[i] = v.String
			} else {
				rendered[i] = "None"
			}
		}
		result.Rows = append(result.Rows, rendered)
	}
	return result, rows.Err()
}

// OccupancyDetails joins every occupancy record with student and room
// for the vector snapshot.
func (s *SQLiteStore) OccupancyDetails(ctx context.Context) ([]model.OccupancyDetail, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT o.occupancy_id, o.student_id, o.room_id, o.check_in_date, o.check_out_date,
		        s.name, r.floor, r.room_number
		 FROM occupancy o
		 JOIN students s ON o.student_id = s.student_id
		 JOIN rooms r ON o.room_id = r.room_id
		 ORDER BY o.occupancy_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.OccupancyDetail, 0, 40)
	for rows.Next() {
		var (
			detail   model.OccupancyDetail
			checkOut sql.NullString
		)
		if err := rows.Scan(
			&detail.OccupancyID, &detail.StudentID, &detail.RoomID, &detail.CheckInDate,
			&checkOut, &detail.StudentName, &detail.Floor, &detail.RoomNumber,
		); err != nil {
			return nil, err
		}
		if checkOut.Valid {
			v := checkOut.String
			detail.CheckOutDate = &v
		}
		out = append(out, detail)
	}
	return out, rows.Err()
}

// MaintenanceDetails joins every maintenance request with its room for
// the vector snapshot.
func (s *SQLiteStore) MaintenanceDetails(ctx context.Context) ([]model.MaintenanceDetail, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT m.request_id, m.room_id, m.issue_description, m.reported_date, m.status, m.resolved_date,
		        r.floor, r.room_number
		 FROM maintenance m
		 JOIN rooms r ON m.room_id = r.room_id
		 ORDER BY m.request_id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.MaintenanceDetail, 0, 16)
	for rows.Next() {
		var (
			detail   model.MaintenanceDetail
			resolved sql.NullString
		)
		if err := rows.Scan(
			&detail.RequestID, &detail.RoomID, &detail.IssueDescription, &detail.ReportedDate,
			&detail.Status, &resolved, &detail.Floor, &detail.RoomNumber,
		); err != nil {
			return nil, err
		}
		if resolved.Valid {
			v := resolved.String
			detail.ResolvedDate = &v
		}
		out = append(out, detail)
	}
	return out, rows.Err()
}

// Summary holds the counts printed after seeding.
type Summary struct {
	Rooms       int
	Students    int
	Active      int
	CheckedOut  int
	Maintenance int
}

func (s *SQLiteStore) Summarize(ctx context.Context) (Summary, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	counts := []struct {
		query string
		args  []any
		dst   *int
	}{
		{`SELECT COUNT(*) FROM rooms`, nil, &summary.Rooms},
		{`SELECT COUNT(*) FROM students`, nil, &summary.Students},
		{`SELECT COUNT(*) FROM students WHERE status = ?`, []any{model.StudentActive}, &summary.Active},
		{`SELECT COUNT(*) FROM students WHERE status = ?`, []any{model.StudentCheckedOut}, &summary.CheckedOut},
		{`SELECT COUNT(*) FROM maintenance`, nil, &summary.Maintenance},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
