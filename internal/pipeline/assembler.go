package pipeline

import (
	"sort"

	"zhvipulse/pkg/contracts/domain"
)

// Report holds the three output tables of a pipeline run. Ordering is fully
// deterministic: ZIPs ascending, years ascending, historical before forecast.
type Report struct {
	YearlyHistory []domain.SeriesPoint
	Summary       []domain.ZipKPI
	Combined      []domain.SeriesPoint
}

// assembleZip merges one ZIP's history and forecast into ordered series
// points. Years never collide by construction; the tiebreak keeps historical
// points first if they ever did.
func assembleZip(zip string, history, forecast []domain.YearValue) (hist, combined []domain.SeriesPoint) {
	hist = make([]domain.SeriesPoint, 0, len(history))
	for _, yv := range history {
		hist = append(hist, domain.SeriesPoint{Zip: zip, Year: yv.Year, Price: yv.Value, Type: domain.PointHistorical})
	}

	combined = make([]domain.SeriesPoint, 0, len(history)+len(forecast))
	combined = append(combined, hist...)
	for _, yv := range forecast {
		combined = append(combined, domain.SeriesPoint{Zip: zip, Year: yv.Year, Price: yv.Value, Type: domain.PointForecast})
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].Year != combined[j].Year {
			return combined[i].Year < combined[j].Year
		}
		return combined[i].Type == domain.PointHistorical && combined[j].Type == domain.PointForecast
	})

	return hist, combined
}

// finalize sorts the report tables into their published order.
func (r *Report) finalize() {
	sortPoints := func(points []domain.SeriesPoint) {
		sort.SliceStable(points, func(i, j int) bool {
			if points[i].Zip != points[j].Zip {
				return points[i].Zip < points[j].Zip
			}
			return points[i].Year < points[j].Year
		})
	}
	sortPoints(r.YearlyHistory)
	sortPoints(r.Combined)
	sort.Slice(r.Summary, func(i, j int) bool { return r.Summary[i].Zip < r.Summary[j].Zip })
}
