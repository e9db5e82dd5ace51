package database

import "fmt"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		organization_id TEXT,
		name TEXT,
		code TEXT,
		status TEXT,
		address_line1 TEXT,
		city TEXT,
		asset_value REAL,
		market_value REAL,
		purchase_price REAL,
		valuation REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		organization_id TEXT,
		property_id TEXT,
		code TEXT,
		name TEXT,
		is_active INTEGER DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS leases (
		id TEXT PRIMARY KEY,
		organization_id TEXT,
		property_id TEXT,
		unit_id TEXT,
		tenant_full_name TEXT,
		lease_status TEXT,
		starts_on TEXT,
		ends_on TEXT,
		monthly_rent REAL,
		currency TEXT,
		fx_rate_to_pyg REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		organization_id TEXT,
		property_id TEXT,
		unit_id TEXT,
		title TEXT,
		type TEXT,
		status TEXT,
		priority TEXT,
		due_at TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS collection_records (
		id TEXT PRIMARY KEY,
		organization_id TEXT,
		lease_id TEXT,
		property_id TEXT,
		status TEXT,
		due_date TEXT,
		paid_at TEXT,
		amount REAL,
		currency TEXT,
		fx_rate_to_pyg REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS portfolio_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at TEXT NOT NULL,
		property_count INTEGER NOT NULL,
		critical_count INTEGER NOT NULL,
		watch_count INTEGER NOT NULL,
		summary TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_units_property ON units(property_id);`,
	`CREATE INDEX IF NOT EXISTS idx_leases_property ON leases(property_id);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_property ON tasks(property_id);`,
	`CREATE INDEX IF NOT EXISTS idx_collections_lease ON collection_records(lease_id);`,
}

func (d *Database) RunMigrations() error {
	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
