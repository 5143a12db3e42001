package pipeline

import (
	"fmt"
	"math"

	apperrors "zhvipulse/internal/errors"
	"zhvipulse/pkg/contracts/domain"
)

// BuildKPI derives the headline metrics for one ZIP from its yearly history
// and forecast points. The forecast horizon is the number of forecast points.
func BuildKPI(zip string, history, forecast []domain.YearValue) (domain.ZipKPI, error) {
	if len(history) == 0 || len(forecast) == 0 {
		return domain.ZipKPI{}, fmt.Errorf("zip %s: %w", zip, apperrors.ErrInsufficientHistory)
	}

	current := history[len(history)-1].Value
	projected := forecast[len(forecast)-1].Value

	// Growth and CAGR are undefined for non-positive prices.
	if current <= 0 {
		return domain.ZipKPI{}, fmt.Errorf("zip %s current price %.2f: %w", zip, current, apperrors.ErrInvalidPrice)
	}
	if projected <= 0 {
		return domain.ZipKPI{}, fmt.Errorf("zip %s projected price %.2f: %w", zip, projected, apperrors.ErrInvalidPrice)
	}

	horizon := float64(len(forecast))
	growthPct := (projected - current) / current * 100
	cagr := (math.Pow(projected/current, 1/horizon) - 1) * 100

	return domain.ZipKPI{
		Zip:          zip,
		CurrentValue: current,
		Forecast5Yr:  projected,
		GrowthPct5Yr: growthPct,
		CAGR:         cagr,
	}, nil
}
