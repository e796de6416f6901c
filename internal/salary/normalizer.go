// Package salary parses per-season salary tables from the supported
// sources into SalaryRecords.
package salary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/logger"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// Unit divisors. The two sources stay on different scales:
// hoopshype figures end up in thousands of USD, ESPN figures in hundreds of
// thousands of USD.
var (
	HoopshypeDivisor = decimal.NewFromInt(1_000)
	ESPNDivisor      = decimal.NewFromInt(100_000)
)

// Source describes one salary table schema.
type Source interface {
	Name() string
	// Load reads the raw table for season from dataDir.
	Load(dataDir string, season int) (*dataset.Table, error)
	// Normalize turns the raw table into salary records.
	Normalize(table *dataset.Table) ([]models.SalaryRecord, error)
}

// NewSource returns the Source registered under name.
func NewSource(name string) (Source, error) {
	switch name {
	case config.SalarySourceHoopshype:
		return Hoopshype{}, nil
	case config.SalarySourceESPN:
		return ESPN{}, nil
	default:
		return nil, fmt.Errorf("invalid salary source %q", name)
	}
}

// ParseAmount converts a currency cell such as "$1,234,567" into the
// source scale by dividing by divisor. The arithmetic is exact decimal
// until the final conversion.
func ParseAmount(cell string, divisor decimal.Decimal) (float64, error) {
	cleaned := strings.TrimSpace(cell)
	cleaned = strings.Trim(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in %q", cell)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("negative salary %q", cell)
	}

	v, _ := amount.Div(divisor).Float64()
	return v, nil
}

// collector accumulates records for one season, enforcing one row per name.
type collector struct {
	source  string
	season  int
	records []models.SalaryRecord
	seen    map[string]bool
	log     *logrus.Entry
}

func newCollector(source string, season int, capacity int) *collector {
	return &collector{
		source:  source,
		season:  season,
		records: make([]models.SalaryRecord, 0, capacity),
		seen:    make(map[string]bool, capacity),
		log:     logger.WithSource(source, season),
	}
}

// add parses cell and appends a record. Empty cells are skipped, malformed
// ones fail the season.
func (c *collector) add(name, position, cell, column string, divisor decimal.Decimal) error {
	if strings.TrimSpace(cell) == "" {
		c.log.WithField("player", name).Warn("Empty salary cell, skipping player")
		return nil
	}

	amount, err := ParseAmount(cell, divisor)
	if err != nil {
		return utils.NewPipelineError(utils.StageNormalize, c.season, utils.ErrMalformedSalary).
			WithColumn(column).
			WithDetail("source %s player %q value %q: %v", c.source, name, cell, err)
	}

	if c.seen[name] {
		c.log.WithField("player", name).Warn("Duplicate salary row, keeping the first")
		return nil
	}
	c.seen[name] = true

	c.records = append(c.records, models.SalaryRecord{
		Name:     name,
		Position: position,
		Season:   c.season,
		Salary:   amount,
	})
	return nil
}
