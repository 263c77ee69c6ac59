package main

import (
	"fmt"
	"io"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
)

// newLogger returns a logrus-backed logger writing to stderr and, if logFile
// is set, to that file as well. The returned function closes the file.
func newLogger(
	level logger.Level,
	stderr io.Writer,
	logFile string,
) (logger.Logger, func() error, error) {
	logrusLogger := logrus.DefaultLogrusLogger()
	closeFn := func() error { return nil }
	if logFile == "" {
		logrusLogger.SetOutput(stderr)
	} else {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the log file '%s': %w", logFile, err)
		}
		logrusLogger.SetOutput(io.MultiWriter(stderr, f))
		closeFn = f.Close
	}
	return logrus.New(logrusLogger).WithLevel(level), closeFn, nil
}
