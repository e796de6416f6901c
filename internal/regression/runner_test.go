package regression

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/panel"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

type recordingWriter struct {
	names []string
	err   error
}

func (w *recordingWriter) WriteResult(_ context.Context, spec models.ModelSpec, result *Result) error {
	w.names = append(w.names, spec.Name+":"+result.ModelName)
	return w.err
}

func feature(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func panelRow(player string, season int, salary, threesRate, nextSalary float64) models.PanelRow {
	return models.PanelRow{
		PlayerSeasonRecord: models.PlayerSeasonRecord{
			Player: player,
			Season: season,
			Trend:  season - 2000,
			Stats:  map[string]float64{},
		},
		Salary: salary,
		Features: map[string]sql.NullFloat64{
			models.RateThreesPerMinute: feature(threesRate),
			models.ColNextYearSalary:   feature(nextSalary),
		},
	}
}

func fixturePanel() *panel.Panel {
	nan := math.NaN()
	return &panel.Panel{
		Rows: []models.PanelRow{
			panelRow("A", 2001, 1, 1, 10),
			panelRow("B", 2001, 3, 2, 11),
			panelRow("C", 2001, 2, 3, 12),
			panelRow("D", 2001, 5, 4, 13),
			panelRow("E", 2001, 7, nan, 14),
			panelRow("F", 2001, 9, 5, nan),
		},
		FeatureColumns: []string{models.RateThreesPerMinute, models.ColNextYearSalary},
	}
}

func TestBuildDesignListwiseDeletion(t *testing.T) {
	spec := models.ModelSpec{Name: "m", DependentVar: models.ColSalary, IndependentVars: []string{models.RateThreesPerMinute}}

	design, err := BuildDesign(fixturePanel(), spec)
	require.NoError(t, err)

	rows, cols := design.X.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{ConstTerm, models.RateThreesPerMinute}, design.Terms)
	assert.Equal(t, []float64{1, 3, 2, 5, 9}, design.Y)
	assert.Equal(t, 0, design.DroppedMissingLabel)
	assert.Equal(t, 1, design.DroppedMissing)
	for i := 0; i < rows; i++ {
		assert.Equal(t, 1.0, design.X.At(i, 0))
	}
}

func TestBuildDesignDropsMissingNextYearSalary(t *testing.T) {
	spec := models.ModelSpec{Name: "m", DependentVar: models.ColNextYearSalary, IndependentVars: []string{models.RateThreesPerMinute}}

	design, err := BuildDesign(fixturePanel(), spec)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 11, 12, 13}, design.Y)
	assert.Equal(t, 1, design.DroppedMissingLabel)
	assert.Equal(t, 1, design.DroppedMissing)
}

func TestBuildDesignUnknownColumn(t *testing.T) {
	spec := models.ModelSpec{Name: "m", DependentVar: models.ColSalary, IndependentVars: []string{"bogus"}}

	_, err := BuildDesign(fixturePanel(), spec)
	assert.ErrorIs(t, err, utils.ErrUnknownColumn)
}

func TestRunnerRunWritesResults(t *testing.T) {
	p := fixturePanel()
	p.Rows = p.Rows[:4]
	spec := models.ModelSpec{Name: "model_1", DependentVar: models.ColSalary, IndependentVars: []string{models.RateThreesPerMinute}}

	first, second := &recordingWriter{}, &recordingWriter{}
	res, err := NewRunner(first, second).Run(context.Background(), p, spec)
	require.NoError(t, err)

	assert.Equal(t, "model_1", res.ModelName)
	assert.Equal(t, models.ColSalary, res.DependentVar)
	assert.InDelta(t, 1.1, res.Params[1], 1e-9)
	assert.Equal(t, []string{"model_1:model_1"}, first.names)
	assert.Equal(t, []string{"model_1:model_1"}, second.names)
}

func TestRunnerRunPropagatesWriterError(t *testing.T) {
	spec := models.ModelSpec{Name: "model_1", DependentVar: models.ColSalary, IndependentVars: []string{models.RateThreesPerMinute}}
	boom := errors.New("disk full")

	_, err := NewRunner(&recordingWriter{err: boom}).Run(context.Background(), fixturePanel(), spec)
	assert.ErrorIs(t, err, boom)
}

func TestRunnerRunAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	spec := models.ModelSpec{Name: "model_1", DependentVar: models.ColSalary, IndependentVars: []string{models.RateThreesPerMinute}}

	_, err := NewRunner().RunAll(ctx, fixturePanel(), []models.ModelSpec{spec})
	assert.ErrorIs(t, err, context.Canceled)
}

func writeSpec(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644))
}

func TestLoadSpec(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "model_1", `{"independent_vars": ["3PPerMP", "last_year_salary"], "dependent_var": "salary"}`)

	spec, err := LoadSpec(dir, "model_1")
	require.NoError(t, err)
	assert.Equal(t, "model_1", spec.Name)
	assert.Equal(t, []string{"3PPerMP", "last_year_salary"}, spec.IndependentVars)
	assert.Equal(t, "salary", spec.DependentVar)
}

func TestLoadSpecInvalid(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "empty_vars", `{"independent_vars": [], "dependent_var": "salary"}`)
	writeSpec(t, dir, "no_label", `{"independent_vars": ["3PPerMP"]}`)
	writeSpec(t, dir, "broken", `{"independent_vars": [`)

	tests := []string{"empty_vars", "no_label", "broken", "absent"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSpec(dir, name)
			assert.ErrorIs(t, err, utils.ErrInvalidModelSpec)
		})
	}
}

func TestLoadSpecsKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "model_2", `{"independent_vars": ["3PPerMP"], "dependent_var": "salary"}`)
	writeSpec(t, dir, "model_1", `{"independent_vars": ["PTSPerMP"], "dependent_var": "salary"}`)

	specs, err := LoadSpecs(dir, []string{"model_2", "model_1"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "model_2", specs[0].Name)
	assert.Equal(t, "model_1", specs[1].Name)
}
