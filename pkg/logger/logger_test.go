package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		envLevel      string
		logFormat     string
		isDevelopment bool
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "production defaults",
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "development defaults to debug text",
			isDevelopment: true,
			expectedLevel: logrus.DebugLevel,
			expectJSON:    false,
		},
		{
			name:          "development with json format",
			isDevelopment: true,
			logFormat:     "JSON",
			expectedLevel: logrus.DebugLevel,
			expectJSON:    true,
		},
		{
			name:          "explicit level wins over environment",
			logLevel:      "error",
			envLevel:      "debug",
			expectedLevel: logrus.ErrorLevel,
			expectJSON:    true,
		},
		{
			name:          "environment level used when none given",
			envLevel:      "WARN",
			expectedLevel: logrus.WarnLevel,
			expectJSON:    true,
		},
		{
			name:          "invalid level defaults to info",
			logLevel:      "invalid",
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envLevel)
			t.Setenv("LOG_FORMAT", tt.logFormat)
			Logger = nil

			log := InitLogger(tt.logLevel, tt.isDevelopment)

			assert.Equal(t, tt.expectedLevel, log.GetLevel(), "log level mismatch")
			if tt.expectJSON {
				_, ok := log.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "expected JSON formatter")
			} else {
				_, ok := log.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "expected text formatter")
			}
			assert.Same(t, log, Logger)
		})
	}
}

func TestGetLoggerInitializesOnce(t *testing.T) {
	Logger = nil
	first := GetLogger()
	second := GetLogger()
	assert.Same(t, first, second)
}

func TestWithSeason(t *testing.T) {
	Logger = nil
	os.Unsetenv("LOG_LEVEL")
	log := InitLogger("debug", false)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	WithSeason("cleaner", 2014).Debug("cleaning season")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cleaner", entry["component"])
	assert.Equal(t, float64(2014), entry["season"])
	assert.Equal(t, "cleaning season", entry["msg"])
}

func TestWithModelOmitsEmptyRunID(t *testing.T) {
	Logger = nil
	log := InitLogger("info", false)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	WithModel("model_1", "").Info("fitting")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "model_1", entry["model"])
	assert.NotContains(t, entry, "run_id")
}

func TestWithSource(t *testing.T) {
	Logger = nil
	log := InitLogger("info", false)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	WithSource("espn", 2003).Warn("empty salary")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "espn", entry["source"])
	assert.Equal(t, "salary", entry["component"])
	assert.Equal(t, "warning", entry["level"])
}
