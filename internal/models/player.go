package models

import "math"

// Column headers of the basketball-reference season totals table
const (
	ColPlayer   = "Player"
	ColPosition = "Pos"
	ColTeam     = "Tm"
)

// Numeric stat columns, named as in the source table
const (
	StatAge           = "Age"
	StatGames         = "G"
	StatGamesStarted  = "GS"
	StatMinutes       = "MP"
	StatFieldGoals    = "FG"
	StatFieldGoalAtt  = "FGA"
	StatFieldGoalPct  = "FG%"
	StatThrees        = "3P"
	StatThreeAtt      = "3PA"
	StatThreePct      = "3P%"
	StatTwos          = "2P"
	StatTwoAtt        = "2PA"
	StatTwoPct        = "2P%"
	StatEffectiveFG   = "eFG%"
	StatFreeThrows    = "FT"
	StatFreeThrowAtt  = "FTA"
	StatFreeThrowPct  = "FT%"
	StatOffRebounds   = "ORB"
	StatDefRebounds   = "DRB"
	StatRebounds      = "TRB"
	StatAssists       = "AST"
	StatSteals        = "STL"
	StatBlocks        = "BLK"
	StatTurnovers     = "TOV"
	StatPersonalFouls = "PF"
	StatPoints        = "PTS"
)

// NumericStats is the fixed set of columns coerced to float64 during cleaning.
var NumericStats = []string{
	StatAge, StatGames, StatGamesStarted, StatMinutes,
	StatFieldGoals, StatFieldGoalAtt, StatFieldGoalPct,
	StatThrees, StatThreeAtt, StatThreePct,
	StatTwos, StatTwoAtt, StatTwoPct, StatEffectiveFG,
	StatFreeThrows, StatFreeThrowAtt, StatFreeThrowPct,
	StatOffRebounds, StatDefRebounds, StatRebounds,
	StatAssists, StatSteals, StatBlocks, StatTurnovers,
	StatPersonalFouls, StatPoints,
}

// PlayerSeasonRecord is one cleaned row of a season totals table.
type PlayerSeasonRecord struct {
	Player   string
	Season   int
	Trend    int
	Team     string
	Position string
	// Stats holds every NumericStats column. NaN marks an empty source cell.
	Stats map[string]float64
}

// Stat returns the named stat, or NaN when the record does not carry it.
func (r PlayerSeasonRecord) Stat(name string) float64 {
	v, ok := r.Stats[name]
	if !ok {
		return math.NaN()
	}
	return v
}

func (r PlayerSeasonRecord) Games() float64 {
	return r.Stat(StatGames)
}

func (r PlayerSeasonRecord) Minutes() float64 {
	return r.Stat(StatMinutes)
}
