package fairdivctl

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/slices"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
)

// Problem is an allocation problem read from a YAML or JSON file, e.g.,
//
//	preferences:
//	  - [8, 4, 2]
//	  - [2, 6, 5]
//	budgets: [60, 40]
type Problem struct {
	Preferences division.Preferences `json:"preferences"`
	Budgets     division.Budgets     `json:"budgets,omitempty"`
}

// LoadProblem reads a problem from the YAML or JSON file at path.
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening file %s", path)
	}
	var p Problem
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, errors.Wrapf(err, "failed to parse file %s", path)
	}
	return &p, nil
}

// ParseMatrix parses preferences given as rows separated by semicolons, each a comma-separated list of numbers,
// e.g., "80,19,1;79,1,20" for two agents and three resources.
func ParseMatrix(s string) (division.Preferences, error) {
	rows, err := slices.MapErr(strings.Split(s, ";"), ParseVector)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseVector parses a comma-separated list of numbers.
func ParseVector(s string) ([]float64, error) {
	return slices.MapErr(strings.Split(s, ","), func(v string) (float64, error) {
		v = strings.TrimSpace(v)
		rv, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
				Name:    "value",
				Value:   v,
				Message: "not a number",
			})
		}
		return rv, nil
	})
}
