package models

import "strings"

// AlertFilters stores the notification filter settings for health alerts.
type AlertFilters struct {
	MinOverdueCollections int      `json:"min_overdue_collections"`
	Cities                []string `json:"cities"`
}

// IsRowAllowed checks if a portfolio row matches the filter criteria.
func (f *AlertFilters) IsRowAllowed(row *PortfolioRow) bool {
	if f == nil {
		return true // No filters means allow all
	}

	if row.OverdueCollectionCount < f.MinOverdueCollections {
		return false
	}

	// Check city allow-list
	if len(f.Cities) > 0 {
		allowed := false
		for _, city := range f.Cities {
			if strings.EqualFold(strings.TrimSpace(city), row.City) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}
