// Package cleaner turns raw season totals tables into one record per
// (player, season).
package cleaner

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/logger"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// MinGamesShare is the fraction of the team's games-played maximum a player
// needs to stay in the table.
const MinGamesShare = 0.25

// Cleaner applies the per-season cleaning rules.
type Cleaner struct {
	baselineYear int
	logger       *logrus.Logger
}

// NewCleaner creates a cleaner whose time trend counts seasons from baselineYear
func NewCleaner(baselineYear int) *Cleaner {
	return &Cleaner{
		baselineYear: baselineYear,
		logger:       logger.GetLogger(),
	}
}

// CleanSeason returns the cleaned records for one raw season table.
func (c *Cleaner) CleanSeason(table *dataset.Table) ([]models.PlayerSeasonRecord, error) {
	season := table.Season
	log := logger.WithSeason("cleaner", season)

	required := append([]string{models.ColPlayer, models.ColPosition, models.ColTeam}, models.NumericStats...)
	if err := table.Require(utils.StageClean, required...); err != nil {
		return nil, err
	}

	raw := table.DropSentinelRows(models.ColPlayer, models.ColPosition)

	records := make([]models.PlayerSeasonRecord, 0, raw.Len())
	for i := 0; i < raw.Len(); i++ {
		rec, err := c.parseRow(raw, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	deduped := KeepMostGames(records)
	kept := DropLowParticipation(deduped)

	log.WithFields(logrus.Fields{
		"raw_rows":     table.Len(),
		"parsed_rows":  len(records),
		"unique_rows":  len(deduped),
		"cleaned_rows": len(kept),
	}).Debug("Season cleaned")

	return kept, nil
}

func (c *Cleaner) parseRow(table *dataset.Table, i int) (models.PlayerSeasonRecord, error) {
	rec := models.PlayerSeasonRecord{
		Player:   table.Cell(i, models.ColPlayer),
		Season:   table.Season,
		Trend:    table.Season - c.baselineYear,
		Team:     table.Cell(i, models.ColTeam),
		Position: table.Cell(i, models.ColPosition),
		Stats:    make(map[string]float64, len(models.NumericStats)),
	}

	for _, col := range models.NumericStats {
		v, err := parseStat(table.Cell(i, col))
		if err != nil {
			return rec, utils.NewPipelineError(utils.StageClean, table.Season, utils.ErrMalformedCell).
				WithColumn(col).
				WithDetail("player %q value %q", rec.Player, table.Cell(i, col))
		}
		rec.Stats[col] = v
	}

	// Points are modelled on a two-point basis: three-point makes are
	// removed from the total at three points each.
	rec.Stats[models.StatPoints] -= 3 * rec.Stats[models.StatThrees]

	return rec, nil
}

// parseStat converts a raw cell. Empty cells are missing (NaN), anything
// else must be a number.
func parseStat(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// KeepMostGames keeps, for every player, the row with the most games
// played. Ties keep the earliest row, which for traded players is the
// combined "TOT" line.
func KeepMostGames(records []models.PlayerSeasonRecord) []models.PlayerSeasonRecord {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Games() > records[order[b]].Games()
	})

	seen := make(map[string]bool, len(records))
	out := make([]models.PlayerSeasonRecord, 0, len(records))
	for _, idx := range order {
		rec := records[idx]
		if seen[rec.Player] {
			continue
		}
		seen[rec.Player] = true
		out = append(out, rec)
	}
	return out
}

// DropLowParticipation removes players whose games played fall below
// MinGamesShare of the most games played by anyone on the same team.
func DropLowParticipation(records []models.PlayerSeasonRecord) []models.PlayerSeasonRecord {
	teamMax := make(map[string]float64)
	for _, rec := range records {
		if g := rec.Games(); !math.IsNaN(g) && g > teamMax[rec.Team] {
			teamMax[rec.Team] = g
		}
	}

	out := make([]models.PlayerSeasonRecord, 0, len(records))
	for _, rec := range records {
		if rec.Games() < teamMax[rec.Team]*MinGamesShare {
			continue
		}
		out = append(out, rec)
	}
	return out
}
