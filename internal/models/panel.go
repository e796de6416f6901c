package models

import (
	"database/sql"
	"math"
)

// Base and derived panel column names
const (
	ColSalary         = "salary"
	ColSeason         = "Season"
	ColTrend          = "Trend"
	ColLastYearSalary = "last_year_salary"
	ColNextYearSalary = "next_year_salary"

	RateThreesPerMinute   = "3PPerMP"
	RatePointsPerMinute   = "PTSPerMP"
	RateReboundsPerMinute = "TRBPerMP"
	RateAssistsPerMinute  = "ASTPerMP"
	RateFoulsPerMinute    = "PFPerMP"
	RateStealsPerMinute   = "STLPerMP"

	ColThreesTimesTrend = "3PPerMPxTrend"
)

// Indicator column prefixes
const (
	PrefixSeason   = "season"
	PrefixTeam     = "team"
	PrefixPosition = "position"
)

// RateColumns lists the per-minute rate features in report order.
var RateColumns = []string{
	RateThreesPerMinute,
	RatePointsPerMinute,
	RateReboundsPerMinute,
	RateAssistsPerMinute,
	RateFoulsPerMinute,
	RateStealsPerMinute,
}

// PanelRow is a joined player-season carrying stats, salary, indicator
// columns and engineered features.
type PanelRow struct {
	PlayerSeasonRecord
	SalaryPosition string
	Salary         float64
	Indicators     map[string]float64
	Features       map[string]sql.NullFloat64
}

// Lookup resolves a column by name. valid is false for a missing value and
// known is false when no such column exists on the row.
func (r *PanelRow) Lookup(column string) (value float64, valid bool, known bool) {
	switch column {
	case ColSalary:
		return r.Salary, !math.IsNaN(r.Salary), true
	case ColSeason:
		return float64(r.Season), true, true
	case ColTrend:
		return float64(r.Trend), true, true
	}
	if v, ok := r.Stats[column]; ok {
		return v, !math.IsNaN(v), true
	}
	if v, ok := r.Indicators[column]; ok {
		return v, true, true
	}
	if v, ok := r.Features[column]; ok {
		return v.Float64, v.Valid, true
	}
	return 0, false, false
}

// Feature returns a derived feature, missing when absent.
func (r *PanelRow) Feature(name string) sql.NullFloat64 {
	return r.Features[name]
}

// Clone returns a deep copy so engineered panels never share maps.
func (r PanelRow) Clone() PanelRow {
	out := r
	out.Stats = make(map[string]float64, len(r.Stats))
	for k, v := range r.Stats {
		out.Stats[k] = v
	}
	out.Indicators = make(map[string]float64, len(r.Indicators))
	for k, v := range r.Indicators {
		out.Indicators[k] = v
	}
	out.Features = make(map[string]sql.NullFloat64, len(r.Features))
	for k, v := range r.Features {
		out.Features[k] = v
	}
	return out
}
