package pipeline

import (
	"fmt"

	apperrors "zhvipulse/internal/errors"
	"zhvipulse/pkg/contracts/domain"
)

// Strategy projects a yearly series the given number of years forward.
// Implementations must return exactly horizon points with years forming a
// contiguous continuation of the input.
type Strategy interface {
	Name() string
	Project(yearly []domain.YearValue, horizon int) ([]domain.YearValue, error)
}

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "flat", "":
		return FlatProjection{}, nil
	case "linear":
		return LinearTrend{}, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown forecast strategy %q", name), nil)
	}
}

// FlatProjection carries the last observed yearly value forward unchanged.
// Growth KPIs are exactly zero under this strategy.
type FlatProjection struct{}

// Name implements Strategy.
func (FlatProjection) Name() string { return "flat" }

// Project implements Strategy.
func (FlatProjection) Project(yearly []domain.YearValue, horizon int) ([]domain.YearValue, error) {
	if len(yearly) == 0 {
		return nil, fmt.Errorf("flat projection: %w", apperrors.ErrInsufficientHistory)
	}

	last := yearly[len(yearly)-1]
	points := make([]domain.YearValue, horizon)
	for i := range points {
		points[i] = domain.YearValue{Year: last.Year + i + 1, Value: last.Value}
	}
	return points, nil
}

// LinearTrend fits an ordinary least-squares line through the yearly values
// and extrapolates it.
type LinearTrend struct{}

// Name implements Strategy.
func (LinearTrend) Name() string { return "linear" }

// Project implements Strategy.
func (LinearTrend) Project(yearly []domain.YearValue, horizon int) ([]domain.YearValue, error) {
	if len(yearly) < 2 {
		return nil, fmt.Errorf("linear trend: %w", apperrors.ErrInsufficientHistory)
	}

	slope, intercept := fitLine(yearly)
	lastYear := yearly[len(yearly)-1].Year

	points := make([]domain.YearValue, horizon)
	for i := range points {
		year := lastYear + i + 1
		points[i] = domain.YearValue{Year: year, Value: slope*float64(year) + intercept}
	}
	return points, nil
}

// fitLine computes the least-squares slope and intercept for value over year.
func fitLine(yearly []domain.YearValue) (slope, intercept float64) {
	n := float64(len(yearly))
	var sumX, sumY, sumXY, sumXX float64
	for _, yv := range yearly {
		x := float64(yv.Year)
		sumX += x
		sumY += yv.Value
		sumXY += x * yv.Value
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
