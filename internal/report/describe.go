// Package report writes the tables an analyst reads after a run: per-model
// summaries, descriptive statistics of the rate features and season trends.
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/panel"
)

// DescribeRows are the statistic labels in output order
var DescribeRows = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Description holds descriptive statistics over the non-missing values of
// one column. Everything except Count is NaN for an empty column.
type Description struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Values returns the statistics in DescribeRows order.
func (d Description) Values() []float64 {
	return []float64{float64(d.Count), d.Mean, d.Std, d.Min, d.Q25, d.Q50, d.Q75, d.Max}
}

// Describe summarizes values, skipping NaN. Quantiles interpolate linearly
// between order statistics at position p*(n-1).
func Describe(column string, values []float64) Description {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	nan := math.NaN()
	d := Description{Column: column, Count: len(present), Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	if len(present) == 0 {
		return d
	}

	sort.Float64s(present)
	d.Min = present[0]
	d.Max = present[len(present)-1]
	d.Q25 = quantile(present, 0.25)
	d.Q50 = quantile(present, 0.5)
	d.Q75 = quantile(present, 0.75)
	if len(present) > 1 {
		d.Mean, d.Std = stat.MeanStdDev(present, nil)
	} else {
		d.Mean = present[0]
	}
	return d
}

func quantile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	hi := math.Ceil(h)
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// DescribeRates summarizes every rate feature over the live panel rows.
func DescribeRates(p *panel.Panel) []Description {
	out := make([]Description, 0, len(models.RateColumns))
	for _, col := range models.RateColumns {
		values := make([]float64, len(p.Rows))
		for i := range p.Rows {
			v := p.Rows[i].Feature(col)
			if v.Valid {
				values[i] = v.Float64
			} else {
				values[i] = math.NaN()
			}
		}
		out = append(out, Describe(col, values))
	}
	return out
}
