package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"casaora/server/internal/models"
)

func setupTestDB(t *testing.T) (*Database, *gorm.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	return db, gormDB
}

func TestUpsertRecords_InsertAndLoad(t *testing.T) {
	db, gormDB := setupTestDB(t)

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := UpsertRecords(tx, "properties", []models.Record{
			{"id": "p1", "name": "Casa Sol", "status": "active", "city": "Asuncion"},
		}); err != nil {
			return err
		}
		if err := UpsertRecords(tx, "units", []models.Record{
			{"id": "u1", "property_id": "p1"},
		}); err != nil {
			return err
		}
		return UpsertRecords(tx, "leases", []models.Record{
			{"id": "l1", "unit_id": "u1", "lease_status": "active", "monthly_rent": 1000000.0, "currency": "PYG"},
		})
	})
	require.NoError(t, err)

	snapshot, err := db.LoadSnapshot()
	require.NoError(t, err)

	require.Len(t, snapshot.Properties, 1)
	property := snapshot.Properties[0]
	assert.Equal(t, "Casa Sol", property["name"])
	// NULL columns are omitted so the coercion layer sees sparse records
	assert.NotContains(t, property, "asset_value")

	require.Len(t, snapshot.Leases, 1)
	assert.Equal(t, 1000000.0, snapshot.Leases[0]["monthly_rent"])

	assert.Empty(t, snapshot.Tasks)
	assert.Empty(t, snapshot.Collections)
}

func TestUpsertRecords_ReplacesExistingRow(t *testing.T) {
	db, gormDB := setupTestDB(t)

	require.NoError(t, UpsertRecords(gormDB, "properties", []models.Record{
		{"id": "p1", "name": "Casa Sol", "status": "active"},
	}))
	require.NoError(t, UpsertRecords(gormDB, "properties", []models.Record{
		{"id": "p1", "name": "Casa Sol Renovada", "status": "inactive"},
	}))

	snapshot, err := db.LoadSnapshot()
	require.NoError(t, err)

	require.Len(t, snapshot.Properties, 1)
	assert.Equal(t, "Casa Sol Renovada", snapshot.Properties[0]["name"])
	assert.Equal(t, "inactive", snapshot.Properties[0]["status"])
}

func TestUpsertRecords_SkipsRecordsWithoutID(t *testing.T) {
	db, gormDB := setupTestDB(t)

	require.NoError(t, UpsertRecords(gormDB, "properties", []models.Record{
		{"name": "Sin ID"},
		{"id": "p1", "name": "Con ID"},
	}))

	snapshot, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Len(t, snapshot.Properties, 1)
}

func TestUpsertRecords_DropsUnknownColumns(t *testing.T) {
	db, gormDB := setupTestDB(t)

	require.NoError(t, UpsertRecords(gormDB, "tasks", []models.Record{
		{"id": "t1", "status": "todo", "sla_breached_at": "2025-08-01", "assigned_user_id": "x"},
	}))

	snapshot, err := db.LoadSnapshot()
	require.NoError(t, err)
	require.Len(t, snapshot.Tasks, 1)
	assert.Equal(t, "todo", snapshot.Tasks[0]["status"])
	assert.NotContains(t, snapshot.Tasks[0], "sla_breached_at")
}

func TestUpsertRecords_UnknownTable(t *testing.T) {
	_, gormDB := setupTestDB(t)

	err := UpsertRecords(gormDB, "reservations", []models.Record{{"id": "r1"}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")
}

func TestPortfolioSnapshots(t *testing.T) {
	db, _ := setupTestDB(t)

	// No snapshot yet
	latest, err := db.GetLatestPortfolioSnapshot()
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := &models.PortfolioSnapshot{
		TakenAt:       time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC),
		PropertyCount: 3,
		CriticalCount: 1,
		WatchCount:    1,
		Summary:       models.PortfolioSummary{PropertyCount: 3, TotalUnits: 7},
	}
	require.NoError(t, db.InsertPortfolioSnapshot(first))

	second := &models.PortfolioSnapshot{
		TakenAt:       time.Date(2025, 8, 15, 11, 0, 0, 0, time.UTC),
		PropertyCount: 4,
		Summary:       models.PortfolioSummary{PropertyCount: 4, TotalUnits: 9},
	}
	require.NoError(t, db.InsertPortfolioSnapshot(second))

	latest, err = db.GetLatestPortfolioSnapshot()
	require.NoError(t, err)
	if assert.NotNil(t, latest) {
		assert.Equal(t, 4, latest.PropertyCount)
		assert.Equal(t, 9, latest.Summary.TotalUnits)
		assert.Equal(t, second.TakenAt, latest.TakenAt)
	}
}
