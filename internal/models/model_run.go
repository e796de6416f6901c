package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ModelRun is the persisted record of one regression fit. Statistics that
// can be undefined (perfect fits, constant labels) are nullable.
type ModelRun struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModelName       string         `gorm:"type:varchar(64);not null;index" json:"model_name"`
	SalarySource    string         `gorm:"type:varchar(16);not null" json:"salary_source"`
	DependentVar    string         `gorm:"type:varchar(64);not null" json:"dependent_var"`
	IndependentVars datatypes.JSON `json:"independent_vars"`
	Observations    int            `json:"observations"`
	DfModel         float64        `json:"df_model"`
	DfResid         float64        `json:"df_resid"`
	RSquared        *float64       `json:"r_squared"`
	AdjRSquared     *float64       `json:"adj_r_squared"`
	FStatistic      *float64       `json:"f_statistic"`
	FPValue         *float64       `json:"f_p_value"`
	LogLikelihood   *float64       `json:"log_likelihood"`
	AIC             *float64       `json:"aic"`
	BIC             *float64       `json:"bic"`
	CovarianceType  string         `gorm:"type:varchar(8)" json:"covariance_type"`

	Coefficients []ModelCoefficient `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"coefficients"`
	CreatedAt    time.Time          `json:"created_at"`
}

func (ModelRun) TableName() string {
	return "model_runs"
}

// ModelCoefficient is one row of a fitted coefficient table
type ModelCoefficient struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RunID    uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	Position int       `json:"position"`
	Term     string    `gorm:"type:varchar(64);not null" json:"term"`
	Estimate float64   `json:"estimate"`
	StdErr   *float64  `json:"std_err"`
	ZScore   *float64  `json:"z_score"`
	PValue   *float64  `json:"p_value"`
	CILower  *float64  `json:"ci_lower"`
	CIUpper  *float64  `json:"ci_upper"`
}

func (ModelCoefficient) TableName() string {
	return "model_coefficients"
}
