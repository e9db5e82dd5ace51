package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"casaora/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// Snapshot is one full in-memory copy of the operational records the
// analytics engine consumes.
type Snapshot struct {
	Properties  []models.Record
	Units       []models.Record
	Leases      []models.Record
	Tasks       []models.Record
	Collections []models.Record
}

// LoadSnapshot reads all five record collections. Each record is a sparse
// map: NULL columns are omitted rather than carried as zero values, so
// the coercion layer can tell "unset" from "zero".
func (d *Database) LoadSnapshot() (*Snapshot, error) {
	snapshot := &Snapshot{}
	targets := []struct {
		table string
		dest  *[]models.Record
	}{
		{"properties", &snapshot.Properties},
		{"units", &snapshot.Units},
		{"leases", &snapshot.Leases},
		{"tasks", &snapshot.Tasks},
		{"collection_records", &snapshot.Collections},
	}

	for _, target := range targets {
		records, err := d.loadRecords(target.table)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", target.table, err)
		}
		*target.dest = records
	}
	return snapshot, nil
}

func (d *Database) loadRecords(table string) ([]models.Record, error) {
	rows, err := d.db.Query("SELECT * FROM " + table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(models.Record, len(columns))
		for i, column := range columns {
			switch v := values[i].(type) {
			case nil:
				// omitted: sparse records distinguish unset from zero
			case []byte:
				record[column] = string(v)
			default:
				record[column] = v
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// InsertPortfolioSnapshot persists one scheduler run.
func (d *Database) InsertPortfolioSnapshot(snapshot *models.PortfolioSnapshot) error {
	summary, err := json.Marshal(snapshot.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO portfolio_snapshots (taken_at, property_count, critical_count, watch_count, summary)
		VALUES (?, ?, ?, ?, ?)
	`, snapshot.TakenAt.UTC().Format(time.RFC3339), snapshot.PropertyCount, snapshot.CriticalCount, snapshot.WatchCount, string(summary))
	if err != nil {
		return fmt.Errorf("failed to insert portfolio snapshot: %w", err)
	}
	return nil
}

// GetLatestPortfolioSnapshot returns the most recent scheduler run, or nil
// when no snapshot has been taken yet.
func (d *Database) GetLatestPortfolioSnapshot() (*models.PortfolioSnapshot, error) {
	var snapshot models.PortfolioSnapshot
	var takenAt string
	var summary string

	err := d.db.QueryRow(`
		SELECT id, taken_at, property_count, critical_count, watch_count, summary
		FROM portfolio_snapshots
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&snapshot.ID, &takenAt, &snapshot.PropertyCount, &snapshot.CriticalCount, &snapshot.WatchCount, &summary)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio snapshot: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, takenAt); err == nil {
		snapshot.TakenAt = t
	}
	if err := json.Unmarshal([]byte(summary), &snapshot.Summary); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot summary: %w", err)
	}

	return &snapshot, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}
