package panel

import (
	"database/sql"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/logger"
)

// rateSources maps each per-minute rate to the counting stat it divides.
var rateSources = []struct {
	name string
	stat string
}{
	{models.RateThreesPerMinute, models.StatThrees},
	{models.RatePointsPerMinute, models.StatPoints},
	{models.RateReboundsPerMinute, models.StatRebounds},
	{models.RateAssistsPerMinute, models.StatAssists},
	{models.RateFoulsPerMinute, models.StatPersonalFouls},
	{models.RateStealsPerMinute, models.StatSteals},
}

// InteractionPositions are the positions whose 3PPerMP x Trend slope is
// estimated separately.
var InteractionPositions = []string{"PF", "PG", "SF", "SG"}

type recordKey struct {
	player string
	season int
}

// knownBadRecords is a one-off patch: the 2013 Damion James row in the
// scraped source is wrong. It is not a general filtering rule.
var knownBadRecords = map[recordKey]bool{
	{player: "Damion James", season: 2013}: true,
}

// Engineer derives every feature column from the base columns of p and
// returns a new panel. p is not modified. Because features never read
// other features, engineering an engineered panel yields the same values.
func Engineer(p *Panel) *Panel {
	log := logger.WithComponent("features")

	all := make([]models.PanelRow, 0, len(p.Rows)+len(p.Excluded))
	for _, row := range p.Rows {
		all = append(all, resetFeatures(row))
	}
	for _, row := range p.Excluded {
		all = append(all, resetFeatures(row))
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Player != all[j].Player {
			return all[i].Player < all[j].Player
		}
		return all[i].Season < all[j].Season
	})

	addSalaryShifts(all)
	addRates(all)

	out := &Panel{
		SeasonLevels:     append([]int(nil), p.SeasonLevels...),
		IndicatorColumns: append([]string(nil), p.IndicatorColumns...),
	}
	for _, row := range all {
		if knownBadRecords[recordKey{row.Player, row.Season}] {
			out.Excluded = append(out.Excluded, row)
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	interactions := addInteractions(out)

	out.FeatureColumns = []string{models.ColLastYearSalary, models.ColNextYearSalary}
	out.FeatureColumns = append(out.FeatureColumns, models.RateColumns...)
	out.FeatureColumns = append(out.FeatureColumns, interactions...)

	log.WithFields(logrus.Fields{
		"rows":            len(out.Rows),
		"excluded_rows":   len(out.Excluded),
		"feature_columns": len(out.FeatureColumns),
	}).Info("Features engineered")

	return out
}

func resetFeatures(row models.PanelRow) models.PanelRow {
	out := row.Clone()
	out.Features = make(map[string]sql.NullFloat64)
	return out
}

// addSalaryShifts sets last/next year salary from the neighbouring rows of
// the same player. rows must be sorted by (player, season). A gap year does
// not matter: "last" is the last season the player is present.
func addSalaryShifts(rows []models.PanelRow) {
	for i := range rows {
		var last, next sql.NullFloat64
		if i > 0 && rows[i-1].Player == rows[i].Player {
			last = sql.NullFloat64{Float64: rows[i-1].Salary, Valid: true}
		}
		if i+1 < len(rows) && rows[i+1].Player == rows[i].Player {
			next = sql.NullFloat64{Float64: rows[i+1].Salary, Valid: true}
		}
		rows[i].Features[models.ColLastYearSalary] = last
		rows[i].Features[models.ColNextYearSalary] = next
	}
}

// addRates sets the per-minute rates. Zero or missing minutes give missing
// rates rather than infinities.
func addRates(rows []models.PanelRow) {
	for i := range rows {
		row := &rows[i]
		minutes, minutesValid, _ := row.Lookup(models.StatMinutes)
		for _, rs := range rateSources {
			v, valid, _ := row.Lookup(rs.stat)
			if !minutesValid || minutes == 0 || !valid {
				row.Features[rs.name] = sql.NullFloat64{}
				continue
			}
			row.Features[rs.name] = sql.NullFloat64{Float64: v / minutes, Valid: true}
		}
	}
}

// addInteractions adds the 3PPerMP interaction terms to every row of p and
// returns their column names in order.
func addInteractions(p *Panel) []string {
	var names []string

	seasonCols := make([]string, 0, len(p.SeasonLevels))
	for _, season := range dropFirstInt(p.SeasonLevels) {
		indicator := IndicatorName(models.PrefixSeason, strconv.Itoa(season))
		seasonCols = append(seasonCols, indicator)
		names = append(names, models.RateThreesPerMinute+"x"+indicator)
	}

	positionCols := make([]string, len(InteractionPositions))
	for i, pos := range InteractionPositions {
		positionCols[i] = IndicatorName(models.PrefixPosition, pos)
		names = append(names, PositionTrendInteraction(pos))
	}
	names = append(names, models.ColThreesTimesTrend)

	fill := func(rows []models.PanelRow) {
		for i := range rows {
			row := &rows[i]
			rate := row.Features[models.RateThreesPerMinute]
			trend := float64(row.Trend)

			for _, col := range seasonCols {
				row.Features[models.RateThreesPerMinute+"x"+col] = scale(rate, row.Indicators[col])
			}
			for j, col := range positionCols {
				row.Features[PositionTrendInteraction(InteractionPositions[j])] = scale(rate, row.Indicators[col]*trend)
			}
			row.Features[models.ColThreesTimesTrend] = scale(rate, trend)
		}
	}
	fill(p.Rows)
	fill(p.Excluded)

	return names
}

// PositionTrendInteraction names the 3PPerMP x position x Trend column.
func PositionTrendInteraction(position string) string {
	return models.RateThreesPerMinute + "x" + "Position_" + position + "xTrend"
}

func scale(v sql.NullFloat64, factor float64) sql.NullFloat64 {
	if !v.Valid {
		return v
	}
	return sql.NullFloat64{Float64: v.Float64 * factor, Valid: true}
}

func dropFirstInt(levels []int) []int {
	if len(levels) == 0 {
		return levels
	}
	return levels[1:]
}
