// Package panel joins cleaned stats to salaries and engineers the feature
// columns used by the regressions.
package panel

import (
	"github.com/stitts-dev/salary-panel/internal/models"
)

// Panel is the joined (player, season) table. Once engineered it is treated
// as read-only.
type Panel struct {
	Rows []models.PanelRow
	// Excluded holds rows removed by data-quality patches. They still take
	// part in lag/lead computation so re-engineering is stable.
	Excluded []models.PanelRow

	// SeasonLevels lists every season present, ascending. The first level
	// is the reference level and has no indicator column.
	SeasonLevels     []int
	IndicatorColumns []string
	FeatureColumns   []string
}

// Len returns the number of live rows
func (p *Panel) Len() int {
	return len(p.Rows)
}

// Columns lists every column a model may reference, in a stable order.
func (p *Panel) Columns() []string {
	cols := []string{models.ColSeason, models.ColTrend, models.ColSalary}
	cols = append(cols, models.NumericStats...)
	cols = append(cols, p.IndicatorColumns...)
	cols = append(cols, p.FeatureColumns...)
	return cols
}

// HasColumn reports whether name resolves on this panel.
func (p *Panel) HasColumn(name string) bool {
	for _, col := range p.Columns() {
		if col == name {
			return true
		}
	}
	return false
}

// Seasons groups live rows by season, preserving row order.
func (p *Panel) Seasons() map[int][]*models.PanelRow {
	out := make(map[int][]*models.PanelRow)
	for i := range p.Rows {
		row := &p.Rows[i]
		out[row.Season] = append(out[row.Season], row)
	}
	return out
}
