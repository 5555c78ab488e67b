package logging

import (
	"bytes"
	"strings"

	log "github.com/sirupsen/logrus"
)

// CommandLineFormatter writes the bare message, prefixed with the level for warnings and errors.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	if entry.Level <= log.WarnLevel {
		b.WriteString(strings.ToUpper(entry.Level.String()))
		b.WriteString(": ")
	}
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}
