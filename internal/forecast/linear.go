// Package forecast fits a least-squares line to a monthly occupancy
// series and projects it forward.
package forecast

import (
	"dorm2mcp/internal/model"
)

// Project fits y = a + b*x over the observed counts (x = 0..n-1) and
// returns one projected value per future month, truncated to an
// integer the way the projections have always been reported.
// Fewer than two observations cannot define a trend; that is
// model.ErrInsufficientData.
func Project(counts []int, monthsAhead int) ([]int, error) {
	if len(counts) < 2 {
		return nil, model.ErrInsufficientData
	}
	if monthsAhead <= 0 {
		return []int{}, nil
	}

	n := float64(len(counts))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range counts {
		x := float64(i)
		sumX += x
		sumY += float64(y)
		sumXY += x * float64(y)
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	// denom is zero only when every x coincides, which cannot happen for
	// distinct integer positions with n >= 2.
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	out := make([]int, monthsAhead)
	for m := 0; m < monthsAhead; m++ {
		x := float64(len(counts) + m)
		out[m] = int(intercept + slope*x)
	}
	return out, nil
}
