package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the application logger. Set FILESHARE_DEBUG to any
// value to enable debug output.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.TimeOnly,
	})

	if os.Getenv("FILESHARE_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}
