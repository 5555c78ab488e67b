package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/fairdiv/cmd/fairdivctl/cmd"
	"github.com/armadaproject/fairdiv/internal/common/logging"
)

func main() {
	logging.ConfigureCommandLineLogging()
	if err := cmd.RootCmd().Execute(); err != nil {
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error(err)
		log.Debugf("%+v", logging.TopmostWithCause(err))
		os.Exit(1)
	}
}
