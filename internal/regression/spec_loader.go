package regression

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

var validate = validator.New()

// SpecPath returns the JSON file holding the named model spec.
func SpecPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// LoadSpec reads <dir>/<name>.json into a validated ModelSpec.
func LoadSpec(dir, name string) (models.ModelSpec, error) {
	v := viper.New()
	v.SetConfigFile(SpecPath(dir, name))
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return models.ModelSpec{}, fmt.Errorf("%w: %s: %v", utils.ErrInvalidModelSpec, name, err)
	}

	var spec models.ModelSpec
	if err := v.Unmarshal(&spec); err != nil {
		return models.ModelSpec{}, fmt.Errorf("%w: %s: %v", utils.ErrInvalidModelSpec, name, err)
	}
	spec.Name = name

	if err := validate.Struct(spec); err != nil {
		return models.ModelSpec{}, fmt.Errorf("%w: %s: %v", utils.ErrInvalidModelSpec, name, err)
	}
	return spec, nil
}

// LoadSpecs loads every named spec, failing on the first invalid one.
func LoadSpecs(dir string, names []string) ([]models.ModelSpec, error) {
	specs := make([]models.ModelSpec, 0, len(names))
	for _, name := range names {
		spec, err := LoadSpec(dir, name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
