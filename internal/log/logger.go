package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	diagnostics     *logrus.Logger
	diagnosticsOnce sync.Once
)

// Logger returns the process-wide diagnostic logger. Tagging failures are
// reported here and never returned to callers of the boolean API.
func Logger() *logrus.Logger {
	diagnosticsOnce.Do(func() {
		diagnostics = logrus.New()
		diagnostics.SetOutput(os.Stderr)
		diagnostics.SetLevel(logrus.InfoLevel)
		diagnostics.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return diagnostics
}

// SetLevel parses level (debug, info, warn, error) and applies it.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Logger().SetLevel(lvl)
	return nil
}

// SetOutput redirects diagnostic output.
func SetOutput(w io.Writer) {
	Logger().SetOutput(w)
}
