package utils

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedCell    = errors.New("malformed numeric cell")
	ErrMalformedSalary  = errors.New("malformed salary cell")
	ErrMissingColumn    = errors.New("required column missing")
	ErrMissingTable     = errors.New("source table missing")
	ErrEmptyJoin        = errors.New("join produced no rows")
	ErrUnknownColumn    = errors.New("unknown panel column")
	ErrInvalidModelSpec = errors.New("invalid model spec")
	ErrInsufficientRows = errors.New("not enough observations")
	ErrFetchFailed      = errors.New("fetch failed")
)

// PipelineError carries the stage and table coordinates of a failure so the
// analyst can find the offending cell in the source CSV.
type PipelineError struct {
	Stage  string
	Season int
	Column string
	Detail string
	Err    error
}

func NewPipelineError(stage string, season int, err error) *PipelineError {
	return &PipelineError{Stage: stage, Season: season, Err: err}
}

func (e *PipelineError) WithColumn(column string) *PipelineError {
	e.Column = column
	return e
}

func (e *PipelineError) WithDetail(format string, args ...interface{}) *PipelineError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: season %d", e.Stage, e.Season)
	if e.Column != "" {
		msg += fmt.Sprintf(", column %q", e.Column)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Pipeline stage names used in PipelineError.Stage
const (
	StageLoad      = "load"
	StageClean     = "clean"
	StageNormalize = "normalize_salary"
	StageMerge     = "merge"
	StageModel     = "model"
)
