package models

import "time"

// Health classification for a property.
const (
	HealthStable   = "stable"
	HealthWatch    = "watch"
	HealthCritical = "critical"
)

// PortfolioRow is one KPI row per property, as consumed by the dashboard.
// RevenueMtdPyg falls back to projected rent when no revenue has been
// recognized this month, so it may represent realized or projected income.
// AssetValuePyg is estimated from revenue when no valuation field is set
// and must not be treated as authoritative financial data.
type PortfolioRow struct {
	ID                     string  `json:"id"`
	Code                   string  `json:"code"`
	Name                   string  `json:"name"`
	Status                 string  `json:"status"`
	Address                string  `json:"address"`
	City                   string  `json:"city"`
	UnitCount              int     `json:"unitCount"`
	ActiveLeaseCount       int     `json:"activeLeaseCount"`
	OccupancyRate          int     `json:"occupancyRate"`
	RevenueMtdPyg          float64 `json:"revenueMtdPyg"`
	AvgRentPyg             float64 `json:"avgRentPyg"`
	OpenTaskCount          int     `json:"openTaskCount"`
	UrgentTaskCount        int     `json:"urgentTaskCount"`
	OverdueCollectionCount int     `json:"overdueCollectionCount"`
	Health                 string  `json:"health"`
	AssetValuePyg          float64 `json:"assetValuePyg"`
}

// PortfolioSummary aggregates a row set into portfolio-wide totals.
type PortfolioSummary struct {
	PropertyCount           int     `json:"propertyCount"`
	TotalAssetValuePyg      float64 `json:"totalAssetValuePyg"`
	AvgOccupancyRate        float64 `json:"avgOccupancyRate"`
	AvgRentPyg              float64 `json:"avgRentPyg"`
	RevenueMtdPyg           float64 `json:"revenueMtdPyg"`
	OverdueCollectionCount  int     `json:"overdueCollectionCount"`
	OpenTaskCount           int     `json:"openTaskCount"`
	UrgentTaskCount         int     `json:"urgentTaskCount"`
	TotalUnits              int     `json:"totalUnits"`
	ActiveLeaseCount        int     `json:"activeLeaseCount"`
	VacantUnits             int     `json:"vacantUnits"`
	EstimatedVacancyCostPyg float64 `json:"estimatedVacancyCostPyg"`
}

// PortfolioSnapshot is one persisted scheduler run.
type PortfolioSnapshot struct {
	ID            int64            `json:"id"`
	TakenAt       time.Time        `json:"taken_at"`
	PropertyCount int              `json:"property_count"`
	CriticalCount int              `json:"critical_count"`
	WatchCount    int              `json:"watch_count"`
	Summary       PortfolioSummary `json:"summary"`
}
