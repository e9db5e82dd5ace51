package analytics

import "casaora/server/internal/models"

// RelationIndex resolves the indirect foreign keys of the data model:
// units own a property directly, leases own one either directly or through
// their unit. Built once per aggregation call, read-only afterward.
type RelationIndex struct {
	UnitProperty  map[string]string
	LeaseProperty map[string]string
}

// BuildRelationIndex builds both lookup maps in a single pass over each
// list. Records without a resolvable property are left out; later stages
// skip anything the index cannot resolve.
func BuildRelationIndex(units, leases []models.Record) RelationIndex {
	index := RelationIndex{
		UnitProperty:  make(map[string]string, len(units)),
		LeaseProperty: make(map[string]string, len(leases)),
	}

	for _, unit := range units {
		unitID := asString(unit["id"])
		propertyID := asString(unit["property_id"])
		if unitID != "" && propertyID != "" {
			index.UnitProperty[unitID] = propertyID
		}
	}

	for _, lease := range leases {
		leaseID := asString(lease["id"])
		if leaseID == "" {
			continue
		}
		propertyID := asString(lease["property_id"])
		if propertyID == "" {
			propertyID = index.UnitProperty[asString(lease["unit_id"])]
		}
		if propertyID != "" {
			index.LeaseProperty[leaseID] = propertyID
		}
	}

	return index
}
