package salary

import (
	"strings"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// ESPN reads espn.com salary pages. NAME holds "<player>, <position>" and
// figures become hundreds of thousands of USD.
type ESPN struct{}

func (ESPN) Name() string {
	return config.SalarySourceESPN
}

// Load skips the positional header line the scraped table is saved with.
func (e ESPN) Load(dataDir string, season int) (*dataset.Table, error) {
	return dataset.LoadCSV(dataset.SalaryPath(dataDir, e.Name(), season), season, dataset.SkipLines(1))
}

func (e ESPN) Normalize(table *dataset.Table) ([]models.SalaryRecord, error) {
	if err := table.Require(utils.StageNormalize, "NAME", "TEAM", "SALARY"); err != nil {
		return nil, err
	}
	table = table.DropSentinelRows("NAME", "TEAM")

	c := newCollector(e.Name(), table.Season, table.Len())
	for i := 0; i < table.Len(); i++ {
		name, position := SplitNamePosition(table.Cell(i, "NAME"))
		if err := c.add(name, position, table.Cell(i, "SALARY"), "SALARY", ESPNDivisor); err != nil {
			return nil, err
		}
	}
	return c.records, nil
}

// SplitNamePosition splits "LeBron James, SF" into its parts. A cell
// without a comma yields a blank position.
func SplitNamePosition(cell string) (name, position string) {
	parts := strings.Split(cell, ",")
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		position = strings.TrimSpace(parts[1])
	}
	return name, position
}
