package models

// Record is a field-sparse operational record as received from storage or
// an external import. Values are untyped; the analytics coercion layer is
// the only place allowed to interpret them.
type Record map[string]any

// RecordEntities lists the ingestible record kinds, keyed by API entity
// name, with the table each one is stored in.
var RecordEntities = map[string]string{
	"properties":  "properties",
	"units":       "units",
	"leases":      "leases",
	"tasks":       "tasks",
	"collections": "collection_records",
}

// RecordBatch is one queued unit of ingestion work.
type RecordBatch struct {
	Entity  string
	Records []Record
}
