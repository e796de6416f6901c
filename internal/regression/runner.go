package regression

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/panel"
	"github.com/stitts-dev/salary-panel/pkg/logger"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// ResultWriter receives every fitted model. Report files and the run store
// both implement it.
type ResultWriter interface {
	WriteResult(ctx context.Context, spec models.ModelSpec, result *Result) error
}

// Design is the numeric input of one fit after column selection and
// missing-value handling.
type Design struct {
	X     *mat.Dense
	Y     []float64
	Terms []string

	DroppedMissingLabel int
	DroppedMissing      int
}

// Runner fits model specs against an engineered panel.
type Runner struct {
	writers []ResultWriter
}

func NewRunner(writers ...ResultWriter) *Runner {
	return &Runner{writers: writers}
}

// Run fits one spec and hands the result to every writer in order.
func (r *Runner) Run(ctx context.Context, p *panel.Panel, spec models.ModelSpec) (*Result, error) {
	log := logger.WithModel(spec.Name, "")

	design, err := BuildDesign(p, spec)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Name, err)
	}
	if design.DroppedMissingLabel > 0 {
		log.WithField("rows", design.DroppedMissingLabel).Info("Dropped rows with missing label")
	}
	if design.DroppedMissing > 0 {
		log.WithField("rows", design.DroppedMissing).Warn("Dropped rows with missing independent values")
	}

	result, err := FitOLS(design.X, design.Y, design.Terms)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.Name, err)
	}
	result.ModelName = spec.Name
	result.DependentVar = spec.DependentVar
	result.DroppedMissingLabel = design.DroppedMissingLabel
	result.DroppedMissing = design.DroppedMissing

	log.WithFields(logrus.Fields{
		"observations": result.NObs,
		"rank":         result.Rank,
		"r_squared":    result.RSquared,
	}).Info("Model fitted")

	for _, w := range r.writers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.WriteResult(ctx, spec, result); err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.Name, err)
		}
	}
	return result, nil
}

// RunAll fits specs in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, p *panel.Panel, specs []models.ModelSpec) ([]*Result, error) {
	results := make([]*Result, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := r.Run(ctx, p, spec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// BuildDesign selects the spec's columns from the panel, prepends the
// intercept and drops rows with missing values. Rows missing a
// next_year_salary label are counted separately from other listwise drops.
func BuildDesign(p *panel.Panel, spec models.ModelSpec) (*Design, error) {
	columns := append([]string{spec.DependentVar}, spec.IndependentVars...)
	for _, col := range columns {
		if !p.HasColumn(col) {
			return nil, fmt.Errorf("%w: %q", utils.ErrUnknownColumn, col)
		}
	}

	design := &Design{Terms: append([]string{ConstTerm}, spec.IndependentVars...)}
	k := len(design.Terms)
	data := make([]float64, 0, p.Len()*k)

	for i := range p.Rows {
		row := &p.Rows[i]

		label, valid, _ := row.Lookup(spec.DependentVar)
		if !valid && spec.DependentVar == models.ColNextYearSalary {
			design.DroppedMissingLabel++
			continue
		}

		values := make([]float64, 1, k)
		values[0] = 1
		complete := valid
		for _, col := range spec.IndependentVars {
			v, ok, _ := row.Lookup(col)
			if !ok {
				complete = false
				break
			}
			values = append(values, v)
		}
		if !complete {
			design.DroppedMissing++
			continue
		}

		design.Y = append(design.Y, label)
		data = append(data, values...)
	}

	if len(design.Y) == 0 {
		return nil, fmt.Errorf("%w: no complete rows for %d columns", utils.ErrInsufficientRows, len(columns))
	}
	design.X = mat.NewDense(len(design.Y), k, data)
	return design, nil
}
