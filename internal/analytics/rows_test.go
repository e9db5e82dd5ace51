package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"casaora/server/internal/models"
)

var testNow = time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

func buildRows(t *testing.T, properties, units, leases, tasks, collections []models.Record) []models.PortfolioRow {
	t.Helper()
	return BuildPortfolioRows(SnapshotInput{
		Properties:  properties,
		Units:       units,
		Leases:      leases,
		Tasks:       tasks,
		Collections: collections,
		Index:       BuildRelationIndex(units, leases),
		Now:         testNow,
	})
}

func TestBuildPortfolioRows_SingleOccupiedUnit(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Edificio Palma", "code": "PAL", "status": "active", "city": "Asuncion"},
	}
	units := []models.Record{
		{"id": "u1", "property_id": "p1"},
	}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 1000000.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, units, leases, nil, nil)

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, "p1", row.ID)
		assert.Equal(t, 1, row.UnitCount)
		assert.Equal(t, 1, row.ActiveLeaseCount)
		assert.Equal(t, 100, row.OccupancyRate)
		assert.Equal(t, 1000000.0, row.AvgRentPyg)
		assert.Equal(t, models.HealthStable, row.Health)
	}
}

func TestBuildPortfolioRows_LeaseWithoutUnitLeavesUnitsVacant(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Casa Sol", "status": "active"},
	}
	units := []models.Record{
		{"id": "u1", "property_id": "p1"},
		{"id": "u2", "property_id": "p1"},
	}
	leases := []models.Record{
		{"id": "l1", "property_id": "p1", "status": "active", "monthly_rent": 500000.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, units, leases, nil, nil)

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, 2, row.UnitCount)
		assert.Equal(t, 1, row.ActiveLeaseCount)
		// The lease has no unit reference, so the occupied-unit set stays empty
		assert.Equal(t, 0, row.OccupancyRate)
		assert.Equal(t, models.HealthWatch, row.Health)
	}
}

func TestBuildPortfolioRows_OverdueTaskIsUrgent(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Casa Sol", "status": "active"},
	}
	units := []models.Record{
		{"id": "u1", "property_id": "p1"},
		{"id": "u2", "property_id": "p1"},
	}
	leases := []models.Record{
		{"id": "l1", "property_id": "p1", "status": "active", "monthly_rent": 500000.0, "currency": "PYG"},
	}
	tasks := []models.Record{
		{"id": "t1", "property_id": "p1", "status": "open", "due_at": "2025-08-14T09:00:00Z"},
	}

	rows := buildRows(t, properties, units, leases, tasks, nil)

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, 1, row.OpenTaskCount)
		assert.Equal(t, 1, row.UrgentTaskCount)
		assert.Equal(t, models.HealthWatch, row.Health)
	}
}

func TestBuildPortfolioRows_ClosedTasksNeverCounted(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Casa Sol"}}
	tasks := []models.Record{
		{"id": "t1", "property_id": "p1", "status": "done", "due_at": "2025-08-01", "priority": "high"},
		{"id": "t2", "property_id": "p1", "status": "cancelled", "priority": "urgent"},
		{"id": "t3", "property_id": "p1", "status": "todo", "priority": "high"},
		{"id": "t4", "property_id": "p1", "status": "in_progress"},
	}

	rows := buildRows(t, properties, nil, nil, tasks, nil)

	if assert.Len(t, rows, 1) {
		assert.Equal(t, 2, rows[0].OpenTaskCount)
		assert.Equal(t, 1, rows[0].UrgentTaskCount)
	}
}

func TestBuildPortfolioRows_InactiveStatusIsAlwaysCritical(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Casa Luna", "status": "Inactive"},
	}
	units := []models.Record{{"id": "u1", "property_id": "p1"}}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 2000000.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, units, leases, nil, nil)

	if assert.Len(t, rows, 1) {
		assert.Equal(t, "inactive", rows[0].Status)
		assert.Equal(t, 100, rows[0].OccupancyRate)
		assert.Equal(t, models.HealthCritical, rows[0].Health)
	}
}

func TestBuildPortfolioRows_VacantBuildingIsCritical(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Casa Vacia", "status": "active"}}
	units := []models.Record{{"id": "u1", "property_id": "p1"}}

	rows := buildRows(t, properties, units, nil, nil, nil)

	if assert.Len(t, rows, 1) {
		assert.Equal(t, models.HealthCritical, rows[0].Health)
	}
}

func TestBuildPortfolioRows_NoUnitsNoDivisionByZero(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Solar Sin Unidades"}}

	rows := buildRows(t, properties, nil, nil, nil, nil)

	if assert.Len(t, rows, 1) {
		assert.Equal(t, 0, rows[0].UnitCount)
		assert.Equal(t, 0, rows[0].OccupancyRate)
	}
}

func TestBuildPortfolioRows_PropertiesWithoutIDDropped(t *testing.T) {
	properties := []models.Record{
		{"name": "Sin ID"},
		{"id": "", "name": "ID Vacio"},
		{"id": "p1", "name": "Con ID"},
	}

	rows := buildRows(t, properties, nil, nil, nil, nil)
	assert.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID)
}

func TestBuildPortfolioRows_CodeFallsBackToName(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Residencial del Este"},
		{"id": "p2", "name": "Sol", "code": "SOL-01"},
	}

	rows := buildRows(t, properties, nil, nil, nil, nil)

	byID := map[string]models.PortfolioRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	assert.Equal(t, "RESIDE", byID["p1"].Code)
	assert.Equal(t, "SOL-01", byID["p2"].Code)
}

func TestBuildPortfolioRows_RevenueMtdAndOverdueCollections(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Casa Sol"}}
	units := []models.Record{{"id": "u1", "property_id": "p1"}}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 1000000.0, "currency": "PYG"},
	}
	collections := []models.Record{
		// Recognized this month through the lease relation
		{"id": "c1", "lease_id": "l1", "status": "paid", "due_date": "2025-08-05", "paid_at": "2025-08-06", "amount": 1000000.0, "currency": "PYG"},
		// Paid in a previous month: not MTD
		{"id": "c2", "lease_id": "l1", "status": "paid", "due_date": "2025-07-05", "paid_at": "2025-07-06", "amount": 900000.0, "currency": "PYG"},
		// Still open and past due: overdue
		{"id": "c3", "lease_id": "l1", "status": "pending", "due_date": "2025-08-01", "amount": 1000000.0, "currency": "PYG"},
		// Open but due in the future
		{"id": "c4", "lease_id": "l1", "status": "scheduled", "due_date": "2025-09-01", "amount": 1000000.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, units, leases, nil, collections)

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, 1000000.0, row.RevenueMtdPyg)
		assert.Equal(t, 1, row.OverdueCollectionCount)
		// Overdue collection pushes the row to watch
		assert.Equal(t, models.HealthWatch, row.Health)
	}
}

func TestBuildPortfolioRows_RevenueFallsBackToProjectedRent(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Casa Sol"}}
	units := []models.Record{{"id": "u1", "property_id": "p1"}}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 1500000.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, units, leases, nil, nil)

	if assert.Len(t, rows, 1) {
		assert.Equal(t, 1500000.0, rows[0].RevenueMtdPyg)
	}
}

func TestBuildPortfolioRows_CurrencyConversion(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Casa USD"}}
	units := []models.Record{{"id": "u1", "property_id": "p1"}}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 200.0, "currency": "USD", "fx_rate_to_pyg": 7300.0},
		// No usable rate: raw amount contributes unconverted
		{"id": "l2", "unit_id": "u1", "lease_status": "active", "monthly_rent": 100.0, "currency": "USD"},
	}

	rows := buildRows(t, properties, units, leases, nil, nil)

	if assert.Len(t, rows, 1) {
		assert.Equal(t, 1460100.0, rows[0].RevenueMtdPyg) // 200*7300 + 100
	}
}

func TestBuildPortfolioRows_AssetValuePriorityChain(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "A", "asset_value": 500.0, "market_value": 400.0},
		{"id": "p2", "name": "B", "market_value": 400.0, "purchase_price": 300.0},
		{"id": "p3", "name": "C", "purchase_price": 300.0, "valuation": 200.0},
		{"id": "p4", "name": "D", "valuation": 200.0},
		{"id": "p5", "name": "E", "asset_value": -10.0}, // non-positive values are skipped
	}
	units := []models.Record{{"id": "u1", "property_id": "p5"}}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 1000.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, units, leases, nil, nil)

	byID := map[string]models.PortfolioRow{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	assert.Equal(t, 500.0, byID["p1"].AssetValuePyg)
	assert.Equal(t, 400.0, byID["p2"].AssetValuePyg)
	assert.Equal(t, 300.0, byID["p3"].AssetValuePyg)
	assert.Equal(t, 200.0, byID["p4"].AssetValuePyg)
	// Estimated as revenueDisplay * payback multiple
	assert.Equal(t, 96000.0, byID["p5"].AssetValuePyg)
}

func TestBuildPortfolioRows_SortedByName(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Ñandutí"},
		{"id": "p2", "name": "casa azul"},
		{"id": "p3", "name": "Casa Amarilla"},
	}

	rows := buildRows(t, properties, nil, nil, nil, nil)

	if assert.Len(t, rows, 3) {
		assert.Equal(t, "Casa Amarilla", rows[0].Name)
		assert.Equal(t, "casa azul", rows[1].Name)
		assert.Equal(t, "Ñandutí", rows[2].Name)
	}
}

func TestBuildPortfolioRows_Idempotent(t *testing.T) {
	properties := []models.Record{
		{"id": "p1", "name": "Casa Sol", "status": "active"},
		{"id": "p2", "name": "Casa Luna"},
	}
	units := []models.Record{
		{"id": "u1", "property_id": "p1"},
		{"id": "u2", "property_id": "p2"},
	}
	leases := []models.Record{
		{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 750000.0, "currency": "PYG"},
	}
	tasks := []models.Record{
		{"id": "t1", "property_id": "p2", "status": "todo", "priority": "high"},
	}

	first := buildRows(t, properties, units, leases, tasks, nil)
	second := buildRows(t, properties, units, leases, tasks, nil)
	assert.Equal(t, first, second)
}

func TestBuildPortfolioRows_OrphanedRecordsSkipped(t *testing.T) {
	properties := []models.Record{{"id": "p1", "name": "Casa Sol"}}
	leases := []models.Record{
		{"id": "l1", "lease_status": "active", "monthly_rent": 500000.0, "currency": "PYG"},
	}
	tasks := []models.Record{
		{"id": "t1", "status": "todo", "priority": "high"},
	}
	collections := []models.Record{
		{"id": "c1", "status": "paid", "paid_at": "2025-08-10", "amount": 100.0, "currency": "PYG"},
	}

	rows := buildRows(t, properties, nil, leases, tasks, collections)

	if assert.Len(t, rows, 1) {
		row := rows[0]
		assert.Equal(t, 0, row.ActiveLeaseCount)
		assert.Equal(t, 0, row.OpenTaskCount)
		assert.Equal(t, 0.0, row.RevenueMtdPyg)
	}
}
