package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// newLogger builds the command logger. Warnings and errors go to stderr;
// verbose raises the level to debug; debug additionally mirrors everything
// into a per-run log file so bug reports can attach it.
func newLogger(verbose, debug bool) (*log.Logger, func(), error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	logger.SetLevel(log.WarnLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cleanup := func() {}
	if debug {
		path, err := debugLogPath()
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, f))
		logger.SetLevel(log.DebugLevel)
		fmt.Fprintln(os.Stderr, "debug log:", path)
		cleanup = func() { _ = f.Close() }
	}
	return logger, cleanup, nil
}

// debugLogPath returns a fresh log file path under the state directory,
// named with a timestamp and a short run id.
func debugLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "state", "pkgscout", "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("pkgscout_%s_%s.log",
		time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	return filepath.Join(dir, name), nil
}
