// Package store persists fitted model runs so results can be compared
// across salary sources and re-runs.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/regression"
	"github.com/stitts-dev/salary-panel/pkg/database"
	"github.com/stitts-dev/salary-panel/pkg/logger"
)

// RunStore records every fit as a model_runs row with its coefficients.
type RunStore struct {
	db           *database.DB
	salarySource string
	logger       *logrus.Entry
}

func NewRunStore(db *database.DB, salarySource string) *RunStore {
	return &RunStore{
		db:           db,
		salarySource: salarySource,
		logger:       logger.WithComponent("run_store"),
	}
}

// Migrate creates or updates the run tables.
func (s *RunStore) Migrate() error {
	if err := s.db.AutoMigrate(&models.ModelRun{}, &models.ModelCoefficient{}); err != nil {
		return fmt.Errorf("failed to migrate run store: %w", err)
	}
	return nil
}

// WriteResult saves one fitted model.
func (s *RunStore) WriteResult(ctx context.Context, spec models.ModelSpec, result *regression.Result) error {
	run, err := s.newRun(spec, result)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save model run %s: %w", spec.Name, err)
	}

	s.logger.WithFields(logrus.Fields{
		"model":        spec.Name,
		"run_id":       run.ID.String(),
		"coefficients": len(run.Coefficients),
	}).Info("Saved model run")
	return nil
}

func (s *RunStore) newRun(spec models.ModelSpec, result *regression.Result) (*models.ModelRun, error) {
	vars, err := json.Marshal(spec.IndependentVars)
	if err != nil {
		return nil, fmt.Errorf("failed to encode independent vars: %w", err)
	}

	run := &models.ModelRun{
		ID:              uuid.New(),
		ModelName:       spec.Name,
		SalarySource:    s.salarySource,
		DependentVar:    spec.DependentVar,
		IndependentVars: datatypes.JSON(vars),
		Observations:    result.NObs,
		DfModel:         result.DfModel,
		DfResid:         result.DfResid,
		RSquared:        finite(result.RSquared),
		AdjRSquared:     finite(result.AdjRSquared),
		FStatistic:      finite(result.FStatistic),
		FPValue:         finite(result.FPValue),
		LogLikelihood:   finite(result.LogLikelihood),
		AIC:             finite(result.AIC),
		BIC:             finite(result.BIC),
		CovarianceType:  result.CovType,
	}

	run.Coefficients = make([]models.ModelCoefficient, len(result.Terms))
	for i, term := range result.Terms {
		run.Coefficients[i] = models.ModelCoefficient{
			RunID:    run.ID,
			Position: i,
			Term:     term,
			Estimate: result.Params[i],
			StdErr:   finite(result.StdErrors[i]),
			ZScore:   finite(result.ZValues[i]),
			PValue:   finite(result.PValues[i]),
			CILower:  finite(result.ConfLower[i]),
			CIUpper:  finite(result.ConfUpper[i]),
		}
	}
	return run, nil
}

// Runs returns saved runs of a model, newest first, with coefficients in
// term order. An empty name returns every run.
func (s *RunStore) Runs(ctx context.Context, modelName string) ([]models.ModelRun, error) {
	query := s.db.WithContext(ctx).
		Preload("Coefficients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC")
	if modelName != "" {
		query = query.Where("model_name = ?", modelName)
	}

	var runs []models.ModelRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load model runs: %w", err)
	}
	return runs, nil
}

// finite maps NaN and infinities to NULL
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
