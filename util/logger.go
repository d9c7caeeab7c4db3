package util

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It writes to stderr because stdout
// carries the stdio transport.
var Logger = sync.OnceValue(func() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
})
