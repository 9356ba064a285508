package forecast

import (
	"errors"
	"testing"

	"dorm2mcp/internal/model"
)

func TestProject_ExactLinearFit(t *testing.T) {
	got, err := Project([]int{1, 2, 3, 4}, 1)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected [5], got %v", got)
	}
}

func TestProject_MultipleMonths(t *testing.T) {
	got, err := Project([]int{2, 4, 6}, 3)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	want := []int{8, 10, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestProject_FlatSeries(t *testing.T) {
	got, err := Project([]int{7, 7, 7, 7}, 2)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if got[0] != 7 || got[1] != 7 {
		t.Fatalf("flat series should project itself, got %v", got)
	}
}

func TestProject_InsufficientData(t *testing.T) {
	if _, err := Project([]int{3}, 1); !errors.Is(err, model.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := Project(nil, 1); !errors.Is(err, model.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for empty series, got %v", err)
	}
}

func TestProject_ZeroMonthsAhead(t *testing.T) {
	got, err := Project([]int{1, 2}, 0)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty projection, got %v", got)
	}
}
