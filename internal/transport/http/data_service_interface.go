package http

import (
	"context"

	"zhvipulse/pkg/contracts/domain"
)

// DataServiceInterface is what the data handler needs from the service layer.
type DataServiceInterface interface {
	Zips(ctx context.Context) []string
	Series(ctx context.Context, zip string) ([]domain.SeriesPoint, error)
	Summary(ctx context.Context, zip string) (domain.ZipKPI, error)
	Insight(ctx context.Context, zip string) (string, error)
}
