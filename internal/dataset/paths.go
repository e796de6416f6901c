package dataset

import (
	"fmt"
	"path/filepath"
)

// Directory names under DATA_DIR, one per source
const (
	StatsDir          = "player_statistics"
	HoopshypeSalaries = "hoopshype_salaries"
	ESPNSalaries      = "espn_salaries"
)

// StatsPath is where the season totals table for season is stored.
func StatsPath(dataDir string, season int) string {
	return filepath.Join(dataDir, StatsDir, fmt.Sprintf("player_%d.csv", season))
}

// SalaryPath is where the salary table for source and season is stored.
func SalaryPath(dataDir, source string, season int) string {
	return filepath.Join(dataDir, source+"_salaries", fmt.Sprintf("salary_%d.csv", season))
}
