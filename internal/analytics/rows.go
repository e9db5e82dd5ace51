package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"casaora/server/config"
	"casaora/server/internal/models"
)

// SnapshotInput carries one portfolio snapshot through the engine. All
// lists are read-only for the duration of the call; the engine holds no
// state between invocations.
type SnapshotInput struct {
	Properties  []models.Record
	Units       []models.Record
	Leases      []models.Record
	Tasks       []models.Record
	Collections []models.Record
	Index       RelationIndex
	Now         time.Time
}

// valuationFields is the priority order for explicit property valuations.
var valuationFields = []string{"asset_value", "market_value", "purchase_price", "valuation"}

// rowCollator orders rows the way the es-PY dashboard displays them.
var rowCollator = collate.New(language.MustParse("es-PY"), collate.IgnoreCase)

// BuildPortfolioRows joins properties with the aggregated totals into one
// KPI row per property, sorted by name. Properties without an id are
// dropped; every other field falls back rather than failing.
func BuildPortfolioRows(in SnapshotInput) []models.PortfolioRow {
	totals := aggregate(in.Index, in.Leases, in.Tasks, in.Collections, in.Now)

	// Unit counts are grouped once and shared across all rows.
	unitCounts := make(map[string]int, len(in.Properties))
	for _, unit := range in.Units {
		if propertyID := asString(unit["property_id"]); propertyID != "" {
			unitCounts[propertyID]++
		}
	}

	rows := make([]models.PortfolioRow, 0, len(in.Properties))
	for _, property := range in.Properties {
		id := asString(property["id"])
		if id == "" {
			continue
		}

		name := asString(property["name"])
		status := normalizedStatus(property["status"])
		if status == "" {
			status = "active"
		}

		t := totals[id]
		if t == nil {
			t = &propertyTotals{}
		}
		unitCount := unitCounts[id]

		occupancyRate := 0
		if unitCount > 0 {
			occupancyRate = int(math.Round(float64(len(t.occupiedUnits)) / float64(unitCount) * 100))
		}

		avgRent := 0.0
		switch {
		case t.activeLeases > 0:
			avgRent = t.projectedRentPyg / float64(t.activeLeases)
		case unitCount > 0:
			avgRent = t.projectedRentPyg / float64(unitCount)
		}

		// Realized MTD revenue when there is any; projected rent as the
		// estimate otherwise. Dashboard consumers are told a fresh row may
		// show either.
		revenueDisplay := t.revenueMtdPyg
		if revenueDisplay == 0 {
			revenueDisplay = t.projectedRentPyg
		}

		rows = append(rows, models.PortfolioRow{
			ID:                     id,
			Code:                   propertyCode(property, name),
			Name:                   name,
			Status:                 status,
			Address:                asString(property["address_line1"]),
			City:                   asString(property["city"]),
			UnitCount:              unitCount,
			ActiveLeaseCount:       t.activeLeases,
			OccupancyRate:          occupancyRate,
			RevenueMtdPyg:          revenueDisplay,
			AvgRentPyg:             avgRent,
			OpenTaskCount:          t.openTasks,
			UrgentTaskCount:        t.urgentTasks,
			OverdueCollectionCount: t.overdueCollections,
			Health:                 classifyHealth(status, unitCount, t, occupancyRate),
			AssetValuePyg:          assetValue(property, revenueDisplay),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rowCollator.CompareString(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

func propertyCode(property models.Record, name string) string {
	if code := asString(property["code"]); code != "" {
		return code
	}
	runes := []rune(name)
	if len(runes) > 6 {
		runes = runes[:6]
	}
	return strings.ToUpper(string(runes))
}

// assetValue picks the first positive explicit valuation, falling back to
// a payback-multiple estimate over displayed revenue.
func assetValue(property models.Record, revenueDisplay float64) float64 {
	for _, field := range valuationFields {
		if v := asOptionalNumber(property[field]); v != nil && *v > 0 {
			return *v
		}
	}
	return math.Max(revenueDisplay*config.ValuationRevenueMultiple, 0)
}

// classifyHealth folds the concurrent risk signals into one state.
// Critical takes precedence over watch: an inactive or fully vacant
// property is critical no matter how clean its tasks and collections are.
func classifyHealth(status string, unitCount int, t *propertyTotals, occupancyRate int) string {
	if status == "inactive" || (unitCount > 0 && t.activeLeases == 0) {
		return models.HealthCritical
	}
	if t.urgentTasks > 0 || t.overdueCollections > 0 || occupancyRate < 70 {
		return models.HealthWatch
	}
	return models.HealthStable
}
