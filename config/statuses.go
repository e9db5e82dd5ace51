package config

// CanonicalCurrency is the currency every monetary aggregate is normalized
// to before summation. Records priced in other currencies carry their own
// fx_rate_to_pyg.
const CanonicalCurrency = "PYG"

// ValuationRevenueMultiple is the payback multiple used to estimate an
// asset value for properties without an explicit valuation. It is a crude
// approximation, not a market appraisal.
const ValuationRevenueMultiple = 96

// ActiveLeaseStatuses are the lease statuses that count toward occupancy
// and active-lease totals. Delinquent tenants still occupy the unit.
var ActiveLeaseStatuses = map[string]bool{
	"active":     true,
	"delinquent": true,
}

// ClosedTaskStatuses are excluded from open/urgent task counts.
var ClosedTaskStatuses = map[string]bool{
	"done":      true,
	"cancelled": true,
}

// UrgentPriorities mark a task urgent regardless of its due date.
var UrgentPriorities = map[string]bool{
	"high":   true,
	"urgent": true,
}

// RevenueCollectionStatuses are the collection statuses recognized as
// month-to-date revenue.
var RevenueCollectionStatuses = map[string]bool{
	"paid":           true,
	"partially_paid": true,
}

// OpenCollectionStatuses are the collection statuses still awaiting
// payment; only these can become overdue.
var OpenCollectionStatuses = map[string]bool{
	"scheduled": true,
	"pending":   true,
	"late":      true,
}
