package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"casaora/server/internal/models"
)

// tableColumns whitelists the columns each ingestible table accepts.
// Imported records routinely carry extra fields from the upstream system;
// anything outside the whitelist is dropped before the upsert.
var tableColumns = map[string][]string{
	"properties": {
		"id", "organization_id", "name", "code", "status", "address_line1",
		"city", "asset_value", "market_value", "purchase_price", "valuation",
	},
	"units": {
		"id", "organization_id", "property_id", "code", "name", "is_active",
	},
	"leases": {
		"id", "organization_id", "property_id", "unit_id", "tenant_full_name",
		"lease_status", "starts_on", "ends_on", "monthly_rent", "currency",
		"fx_rate_to_pyg",
	},
	"tasks": {
		"id", "organization_id", "property_id", "unit_id", "title", "type",
		"status", "priority", "due_at",
	},
	"collection_records": {
		"id", "organization_id", "lease_id", "property_id", "status",
		"due_date", "paid_at", "amount", "currency", "fx_rate_to_pyg",
	},
}

// UpsertRecords writes a batch of records into table, replacing rows that
// already exist. Records without an id cannot be upserted and are skipped.
func UpsertRecords(tx *gorm.DB, table string, records []models.Record) error {
	columns, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("unknown table: %s", table)
	}

	for _, record := range records {
		row := make(map[string]any, len(columns))
		for _, column := range columns {
			if value, present := record[column]; present && value != nil {
				row[column] = value
			}
		}
		if id, _ := row["id"].(string); id == "" {
			continue
		}

		err := tx.Table(table).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert into %s: %w", table, err)
		}
	}
	return nil
}
