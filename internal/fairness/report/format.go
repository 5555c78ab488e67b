package report

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
)

// Format selects how a Report is rendered.
// Format implements pflag.Value so it can be bound to a command line flag directly.
type Format string

const (
	FormatText Format = "text"
	FormatYaml Format = "yaml"
	FormatJson Format = "json"
)

var formats = []Format{FormatText, FormatYaml, FormatJson}

// ParseFormat returns the format named s, ignoring case.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", errors.WithStack(&fairdiverrors.ErrInvalidArgument{
		Name:    "format",
		Value:   s,
		Message: "must be one of text, yaml or json",
	})
}

func (f Format) String() string {
	return string(f)
}

func (f *Format) Set(s string) error {
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f *Format) Type() string {
	return "format"
}
