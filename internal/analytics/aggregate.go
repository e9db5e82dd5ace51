package analytics

import (
	"strings"
	"time"

	"casaora/server/config"
	"casaora/server/internal/models"
)

// propertyTotals holds the running totals one property accumulates while
// scanning leases, tasks and collections.
type propertyTotals struct {
	activeLeases       int
	occupiedUnits      map[string]struct{}
	projectedRentPyg   float64
	openTasks          int
	urgentTasks        int
	revenueMtdPyg      float64
	overdueCollections int
}

type totalsByProperty map[string]*propertyTotals

func (t totalsByProperty) get(propertyID string) *propertyTotals {
	totals, ok := t[propertyID]
	if !ok {
		totals = &propertyTotals{occupiedUnits: make(map[string]struct{})}
		t[propertyID] = totals
	}
	return totals
}

// aggregate scans leases, tasks and collections once each and accumulates
// per-property totals. Records that resolve to no property are skipped:
// orphaned references are an expected steady state of the upstream system,
// not an error.
func aggregate(index RelationIndex, leases, tasks, collections []models.Record, now time.Time) totalsByProperty {
	totals := make(totalsByProperty)
	monthPrefix := now.Format("2006-01")

	for _, lease := range leases {
		status := normalizedStatus(firstPresent(lease, "lease_status", "status"))
		if !config.ActiveLeaseStatuses[status] {
			continue
		}
		propertyID := asString(lease["property_id"])
		if propertyID == "" {
			propertyID = index.UnitProperty[asString(lease["unit_id"])]
		}
		if propertyID == "" {
			continue
		}

		t := totals.get(propertyID)
		t.activeLeases++
		if unitID := asString(lease["unit_id"]); unitID != "" {
			t.occupiedUnits[unitID] = struct{}{}
		}
		rent := asNumber(lease["monthly_rent"])
		t.projectedRentPyg += convertToPyg(rent, asString(lease["currency"]), asOptionalNumber(lease["fx_rate_to_pyg"]))
	}

	for _, task := range tasks {
		propertyID := asString(task["property_id"])
		if propertyID == "" {
			propertyID = index.UnitProperty[asString(task["unit_id"])]
		}
		if propertyID == "" {
			continue
		}

		status := normalizedStatus(task["status"])
		if config.ClosedTaskStatuses[status] {
			continue
		}

		t := totals.get(propertyID)
		t.openTasks++

		dueAt := toDate(task["due_at"])
		isOverdue := dueAt != nil && dueAt.Before(now)
		if isOverdue || config.UrgentPriorities[normalizedStatus(task["priority"])] {
			t.urgentTasks++
		}
	}

	for _, collection := range collections {
		propertyID := asString(collection["property_id"])
		if propertyID == "" {
			propertyID = index.LeaseProperty[asString(collection["lease_id"])]
		}
		if propertyID == "" {
			continue
		}

		t := totals.get(propertyID)
		status := normalizedStatus(collection["status"])

		if config.RevenueCollectionStatuses[status] && inMonth(collection, monthPrefix) {
			amount := asNumber(collection["amount"])
			t.revenueMtdPyg += convertToPyg(amount, asString(collection["currency"]), asOptionalNumber(collection["fx_rate_to_pyg"]))
		}

		if config.OpenCollectionStatuses[status] {
			if dueDate := toDate(collection["due_date"]); dueDate != nil && dueDate.Before(now) {
				t.overdueCollections++
			}
		}
	}

	return totals
}

// inMonth tests month membership by comparing the date string's YYYY-MM
// prefix against the current month. Dates are stored as ISO strings.
func inMonth(collection models.Record, monthPrefix string) bool {
	return strings.HasPrefix(asString(collection["due_date"]), monthPrefix) ||
		strings.HasPrefix(asString(collection["paid_at"]), monthPrefix)
}

// firstPresent returns the first non-empty field among keys.
func firstPresent(record models.Record, keys ...string) any {
	for _, key := range keys {
		if asString(record[key]) != "" {
			return record[key]
		}
	}
	return nil
}
