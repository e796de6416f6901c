package report

import (
	"math"
	"sort"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/panel"
)

// SeasonTrend is the league-level view of one season
type SeasonTrend struct {
	Season     int
	Players    int
	MeanSalary float64
	// ThreeRate is total 3PA over total FGA for the season
	ThreeRate float64
}

// SeasonTrends aggregates the live panel rows by season, ascending.
func SeasonTrends(p *panel.Panel) []SeasonTrend {
	bySeason := p.Seasons()

	seasons := make([]int, 0, len(bySeason))
	for season := range bySeason {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)

	out := make([]SeasonTrend, 0, len(seasons))
	for _, season := range seasons {
		rows := bySeason[season]
		trend := SeasonTrend{Season: season, Players: len(rows), MeanSalary: math.NaN(), ThreeRate: math.NaN()}

		var salarySum, threes, attempts float64
		var salaryCount int
		for _, row := range rows {
			if !math.IsNaN(row.Salary) {
				salarySum += row.Salary
				salaryCount++
			}
			if v := row.Stat(models.StatThreeAtt); !math.IsNaN(v) {
				threes += v
			}
			if v := row.Stat(models.StatFieldGoalAtt); !math.IsNaN(v) {
				attempts += v
			}
		}
		if salaryCount > 0 {
			trend.MeanSalary = salarySum / float64(salaryCount)
		}
		if attempts > 0 {
			trend.ThreeRate = threes / attempts
		}
		out = append(out, trend)
	}
	return out
}
