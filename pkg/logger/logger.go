package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger initializes the structured logger with proper configuration
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	// Override with environment if not provided
	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(os.Stderr)

	Logger = log

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", false)
	}
	return Logger
}

// WithComponent creates a logger scoped to one pipeline stage
func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

// WithSeason creates a logger with season context
func WithSeason(component string, season int) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": component,
		"season":    season,
	})
}

// WithSource creates a logger with salary source and season context
func WithSource(source string, season int) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": "salary",
		"source":    source,
		"season":    season,
	})
}

// WithModel creates a logger with model run context
func WithModel(modelName, runID string) *logrus.Entry {
	fields := logrus.Fields{"model": modelName}
	if runID != "" {
		fields["run_id"] = runID
	}
	return GetLogger().WithFields(fields)
}
