package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

// ConfigureCommandLineLogging sets up the standard logger for command line tools:
// only the message is written, on stderr, so that results on stdout can be piped.
func ConfigureCommandLineLogging() {
	commandLineFormatter := new(CommandLineFormatter)
	logrus.SetFormatter(commandLineFormatter)
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.InfoLevel)
}

// ConfigureLogging sets up the standard logger according to config, writing to out.
func ConfigureLogging(config Config, out io.Writer) error {
	if err := config.Validate(); err != nil {
		return err
	}
	level, _ := parseLogLevel(config.Level)
	logrus.SetLevel(level)
	logrus.SetOutput(out)
	logrus.SetFormatter(newFormatter(config.Format))
	return nil
}

func newFormatter(format string) logrus.Formatter {
	switch format {
	case FormatCommandLine:
		return new(CommandLineFormatter)
	case FormatJson:
		return &logrus.JSONFormatter{TimestampFormat: RFC3339Milli}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: RFC3339Milli,
	}
}
