package internal

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the single structured logger every component logs
// through (spec.md §4.K), tagged with the run's correlation id so
// interleaved file/stage fields can be traced back to one invocation.
// Verbose raises the level to Debug; quiet silences everything but
// warnings and above.
func NewLogger(runID string, verbose, quiet bool) logrus.FieldLogger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch {
	case verbose:
		base.SetLevel(logrus.DebugLevel)
	case quiet:
		base.SetLevel(logrus.WarnLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return base.WithField("run_id", runID)
}
