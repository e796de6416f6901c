package models

// ModelSpec names one regression: the independent columns and the label.
type ModelSpec struct {
	Name            string   `json:"-" mapstructure:"-"`
	IndependentVars []string `json:"independent_vars" mapstructure:"independent_vars" validate:"required,min=1,dive,required"`
	DependentVar    string   `json:"dependent_var" mapstructure:"dependent_var" validate:"required"`
}
