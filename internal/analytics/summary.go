package analytics

import (
	"strings"

	"casaora/server/internal/models"
)

// FilterAll disables a status or health filter.
const FilterAll = "all"

// FilterPortfolioRows applies the caller-supplied text/status/health
// filters. The free-text query is a case-insensitive substring match over
// name, code, address and city; no tokenization, no ranking.
func FilterPortfolioRows(rows []models.PortfolioRow, query, statusFilter, healthFilter string) []models.PortfolioRow {
	query = strings.ToLower(strings.TrimSpace(query))

	filtered := make([]models.PortfolioRow, 0, len(rows))
	for _, row := range rows {
		if !filterMatches(statusFilter, row.Status) || !filterMatches(healthFilter, row.Health) {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(row.Name + " " + row.Code + " " + row.Address + " " + row.City)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func filterMatches(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}

// BuildPortfolioSummary reduces a row set into portfolio-wide statistics.
// An empty row list yields an all-zero summary; there are no failure
// modes. The rent average only spans rows with a positive average rent so
// zero-rent properties do not drag it down.
func BuildPortfolioSummary(rows []models.PortfolioRow) models.PortfolioSummary {
	summary := models.PortfolioSummary{PropertyCount: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	occupancyTotal := 0
	rentTotal := 0.0
	rentRows := 0
	for _, row := range rows {
		summary.TotalAssetValuePyg += row.AssetValuePyg
		summary.RevenueMtdPyg += row.RevenueMtdPyg
		summary.OverdueCollectionCount += row.OverdueCollectionCount
		summary.OpenTaskCount += row.OpenTaskCount
		summary.UrgentTaskCount += row.UrgentTaskCount
		summary.TotalUnits += row.UnitCount
		summary.ActiveLeaseCount += row.ActiveLeaseCount
		occupancyTotal += row.OccupancyRate
		if row.AvgRentPyg > 0 {
			rentTotal += row.AvgRentPyg
			rentRows++
		}
	}

	summary.AvgOccupancyRate = float64(occupancyTotal) / float64(len(rows))
	if rentRows > 0 {
		summary.AvgRentPyg = rentTotal / float64(rentRows)
	}
	if vacant := summary.TotalUnits - summary.ActiveLeaseCount; vacant > 0 {
		summary.VacantUnits = vacant
	}
	summary.EstimatedVacancyCostPyg = float64(summary.VacantUnits) * summary.AvgRentPyg

	return summary
}
