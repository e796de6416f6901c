package panel

import (
	"database/sql"
	"sort"
	"strconv"

	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/logger"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

type joinKey struct {
	name   string
	season int
}

// Merge inner-joins stats to salaries on exact (player name, season) and
// adds the indicator columns. Unmatched rows on either side are dropped; a
// season with stats but no matches at all is a schema mismatch.
func Merge(stats []models.PlayerSeasonRecord, salaries []models.SalaryRecord) (*Panel, error) {
	log := logger.WithComponent("merger")

	byKey := make(map[joinKey]models.SalaryRecord, len(salaries))
	for _, s := range salaries {
		key := joinKey{s.Name, s.Season}
		if _, dup := byKey[key]; dup {
			continue
		}
		byKey[key] = s
	}

	matchedPerSeason := make(map[int]int)
	statsSeasons := make(map[int]bool)
	matched := make(map[joinKey]bool, len(salaries))

	rows := make([]models.PanelRow, 0, len(stats))
	for _, rec := range stats {
		statsSeasons[rec.Season] = true
		key := joinKey{rec.Player, rec.Season}
		sal, ok := byKey[key]
		if !ok {
			continue
		}
		matched[key] = true
		matchedPerSeason[rec.Season]++

		row := models.PanelRow{
			PlayerSeasonRecord: rec,
			SalaryPosition:     sal.Position,
			Salary:             sal.Salary,
			Indicators:         make(map[string]float64),
			Features:           make(map[string]sql.NullFloat64),
		}
		row.Stats = copyStats(rec.Stats)
		rows = append(rows, row)
	}

	for _, season := range sortedSeasons(statsSeasons) {
		if matchedPerSeason[season] == 0 {
			return nil, utils.NewPipelineError(utils.StageMerge, season, utils.ErrEmptyJoin).
				WithDetail("no stats row matched a salary row")
		}
	}

	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		reportUnmatched(log, stats, salaries, matched)
	}

	p := &Panel{Rows: rows}
	p.encode()

	log.WithFields(logrus.Fields{
		"stats_rows":  len(stats),
		"salary_rows": len(salaries),
		"panel_rows":  len(rows),
		"indicators":  len(p.IndicatorColumns),
	}).Info("Stats and salaries merged")

	return p, nil
}

// encode adds one-hot indicators. Season and team drop their first level
// to avoid collinearity with the intercept; position keeps every level.
func (p *Panel) encode() {
	seasonSet := make(map[int]bool)
	teamSet := make(map[string]bool)
	positionSet := make(map[string]bool)
	for _, row := range p.Rows {
		seasonSet[row.Season] = true
		teamSet[row.Team] = true
		positionSet[row.Position] = true
	}

	p.SeasonLevels = sortedSeasons(seasonSet)
	seasonLevels := make([]string, len(p.SeasonLevels))
	for i, s := range p.SeasonLevels {
		seasonLevels[i] = strconv.Itoa(s)
	}
	teamLevels := sortedStrings(teamSet)
	positionLevels := sortedStrings(positionSet)

	p.IndicatorColumns = nil
	p.IndicatorColumns = append(p.IndicatorColumns, indicatorNames(models.PrefixSeason, dropFirst(seasonLevels))...)
	p.IndicatorColumns = append(p.IndicatorColumns, indicatorNames(models.PrefixTeam, dropFirst(teamLevels))...)
	p.IndicatorColumns = append(p.IndicatorColumns, indicatorNames(models.PrefixPosition, positionLevels)...)

	for i := range p.Rows {
		row := &p.Rows[i]
		for _, col := range p.IndicatorColumns {
			row.Indicators[col] = 0
		}
		setIndicator(row, models.PrefixSeason, strconv.Itoa(row.Season))
		setIndicator(row, models.PrefixTeam, row.Team)
		setIndicator(row, models.PrefixPosition, row.Position)
	}
}

// IndicatorName is the column name for one level of a categorical column.
func IndicatorName(prefix, level string) string {
	return prefix + "_" + level
}

func setIndicator(row *models.PanelRow, prefix, level string) {
	name := IndicatorName(prefix, level)
	// the reference level has no column
	if _, ok := row.Indicators[name]; ok {
		row.Indicators[name] = 1
	}
}

func indicatorNames(prefix string, levels []string) []string {
	names := make([]string, len(levels))
	for i, level := range levels {
		names[i] = IndicatorName(prefix, level)
	}
	return names
}

func dropFirst(levels []string) []string {
	if len(levels) == 0 {
		return levels
	}
	return levels[1:]
}

func sortedSeasons(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func copyStats(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// reportUnmatched logs salary rows that found no stats row, with the
// closest stats name of the same season. Spelling drift between sources
// ("Nene" / "Nene Hilario") shows up here.
func reportUnmatched(log *logrus.Entry, stats []models.PlayerSeasonRecord, salaries []models.SalaryRecord, matched map[joinKey]bool) {
	namesBySeason := make(map[int][]string)
	for _, rec := range stats {
		namesBySeason[rec.Season] = append(namesBySeason[rec.Season], rec.Player)
	}

	for _, s := range salaries {
		if matched[joinKey{s.Name, s.Season}] {
			continue
		}
		entry := log.WithFields(logrus.Fields{"season": s.Season, "player": s.Name})
		if candidates := fuzzy.Find(s.Name, namesBySeason[s.Season]); len(candidates) > 0 {
			entry = entry.WithField("closest_stats_name", candidates[0].Str)
		}
		entry.Debug("Salary row without stats row")
	}
}
