package logging

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	FormatCommandLine = "cli"
	FormatText        = "text"
	FormatJson        = "json"
)

var validLogFormats = map[string]bool{
	FormatCommandLine: true,
	FormatText:        true,
	FormatJson:        true,
}

// Config defines logging configuration.
type Config struct {
	// Log level, e.g. INFO, ERROR etc
	Level string `yaml:"level"`
	// Logging format, one of cli, text or json
	Format string `yaml:"format"`
}

func (c Config) Validate() error {
	if _, err := parseLogLevel(c.Level); err != nil {
		return err
	}
	return validateLogFormat(c.Format)
}

func validateLogFormat(f string) error {
	_, ok := validLogFormats[f]
	if !ok {
		formats := maps.Keys(validLogFormats)
		slices.Sort(formats)
		return errors.Errorf("unknown log format: %s.  Valid formats are %s", f, formats)
	}
	return nil
}

func parseLogLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "panic":
		return logrus.PanicLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	default:
		return logrus.InfoLevel, errors.Errorf("unknown level: %s", level)
	}
}
