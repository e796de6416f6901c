package salary

import (
	"fmt"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// Hoopshype reads hoopshype.com player salary tables. Figures are in USD
// and become thousands of USD.
type Hoopshype struct{}

func (Hoopshype) Name() string {
	return config.SalarySourceHoopshype
}

func (h Hoopshype) Load(dataDir string, season int) (*dataset.Table, error) {
	return dataset.LoadCSV(dataset.SalaryPath(dataDir, h.Name(), season), season)
}

// SalaryColumn names the salary column for season, e.g. "2014/15(*)". The
// starred column is inflation adjusted and exists for every season except
// the current one.
func (Hoopshype) SalaryColumn(season int) string {
	label := fmt.Sprintf("%d/%02d", season, (season+1)%100)
	if season == 2023 {
		return label
	}
	return label + "(*)"
}

func (h Hoopshype) Normalize(table *dataset.Table) ([]models.SalaryRecord, error) {
	column := h.SalaryColumn(table.Season)
	if err := table.Require(utils.StageNormalize, "Player", column); err != nil {
		return nil, err
	}

	c := newCollector(h.Name(), table.Season, table.Len())
	for i := 0; i < table.Len(); i++ {
		name := table.Cell(i, "Player")
		if err := c.add(name, "", table.Cell(i, column), column, HoopshypeDivisor); err != nil {
			return nil, err
		}
	}
	return c.records, nil
}
