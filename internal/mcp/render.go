package mcp

import (
	"fmt"
	"strings"

	"dorm2mcp/internal/model"
)

func renderQueryTable(result model.QueryResult) string {
	if len(result.Rows) == 0 {
		return "No results found."
	}

	header := strings.Join(result.Columns, " | ")
	lines := make([]string, 0, len(result.Rows)+2)
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("-", len(header)))
	for _, row := range result.Rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}

func renderStudentMatches(searchTerm string, matches []model.StudentMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No students found matching '%s'.", searchTerm)
	}

	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		roomInfo := "Not assigned"
		if match.RoomNumber != nil && match.Floor != nil {
			roomInfo = fmt.Sprintf("Room %s (Floor %d)", *match.RoomNumber, *match.Floor)
		}
		blocks = append(blocks, fmt.Sprintf(
			"ID: %s\nName: %s\nProgram: %s\nStatus: %s\nRoom: %s\n",
			match.StudentID, match.Name, match.Program, match.Status, roomInfo,
		))
	}
	return strings.Join(blocks, "\n")
}

func renderRoomOccupants(floor int, roomNumber string, occupants []model.RoomOccupant) string {
	if len(occupants) == 0 {
		return fmt.Sprintf("No current occupants found for Room %s on Floor %d.", roomNumber, floor)
	}

	lines := []string{
		fmt.Sprintf("Room %s (Floor %d) Occupants:", roomNumber, floor),
		strings.Repeat("-", 40),
	}
	for _, occupant := range occupants {
		lines = append(lines, fmt.Sprintf(
			"ID: %s\nName: %s\nProgram: %s\nCheck-in Date: %s\n",
			occupant.StudentID, occupant.Name, occupant.Program, occupant.CheckInDate,
		))
	}
	return strings.Join(lines, "\n")
}

func renderAvailability(rooms []model.RoomAvailability) string {
	lines := []string{"Room Availability:"}

	var floors []int
	seen := map[int]struct{}{}
	for _, room := range rooms {
		if _, ok := seen[room.Floor]; !ok {
			seen[room.Floor] = struct{}{}
			floors = append(floors, room.Floor)
		}
	}

	for _, floor := range floors {
		lines = append(lines, fmt.Sprintf("\nFloor %d:", floor))
		lines = append(lines, strings.Repeat("-", 40))
		for _, room := range rooms {
			if room.Floor != floor {
				continue
			}
			status := "FULL"
			if room.Available != 0 {
				status = fmt.Sprintf("%d beds available", room.Available)
			}
			lines = append(lines, fmt.Sprintf("Room %s: %d/%d occupied - %s", room.RoomNumber, room.Occupied, room.Capacity, status))
		}
	}
	return strings.Join(lines, "\n")
}

func renderForecast(monthsAhead int, projections []int) string {
	lines := []string{fmt.Sprintf("Predicted occupancy for the next %d months:", monthsAhead)}
	for i, projected := range projections {
		lines = append(lines, fmt.Sprintf("Month %d: %d students", i+1, projected))
	}
	return strings.Join(lines, "\n")
}

func renderStudentLines(students []model.Student) string {
	lines := make([]string, 0, len(students))
	for _, s := range students {
		lines = append(lines, fmt.Sprintf("ID: %s, Name: %s, Status: %s", s.StudentID, s.Name, s.Status))
	}
	return strings.Join(lines, "\n")
}

func renderRoomLines(rooms []model.Room) string {
	lines := make([]string, 0, len(rooms))
	for _, r := range rooms {
		lines = append(lines, fmt.Sprintf("Room: %s (Floor %d), Capacity: %d", r.RoomNumber, r.Floor, r.Capacity))
	}
	return strings.Join(lines, "\n")
}

func renderOccupancyLines(rows []model.RoomOccupancy) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("Room %s (Floor %d): %d/%d occupied", r.RoomNumber, r.Floor, r.Occupied, r.Capacity))
	}
	return strings.Join(lines, "\n")
}

func renderMaintenanceLines(rows []model.MaintenanceRow) string {
	lines := make([]string, 0, len(rows))
	for _, m := range rows {
		lines = append(lines, fmt.Sprintf("ID: %d, Room: %s (Floor %d), Issue: %s, Status: %s", m.RequestID, m.RoomNumber, m.Floor, m.IssueDescription, m.Status))
	}
	return strings.Join(lines, "\n")
}
