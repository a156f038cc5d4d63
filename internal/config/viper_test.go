package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLoggingFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{"debug text", "debug", "text", logrus.DebugLevel, false},
		{"warn json", "warn", "json", logrus.WarnLevel, true},
		{"error defaults to text", "error", "", logrus.ErrorLevel, false},
		{"invalid level falls back to info", "loud", "text", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.Log.Level = tt.level
			cfg.Log.Format = tt.format

			logger := ConfigureLoggingFromConfig(&cfg)
			require.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())

			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)

			// The package-level logger follows the configured one.
			assert.Same(t, logger, Logger)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"valid", "info", "text", false},
		{"valid json", "debug", "json", false},
		{"bad level", "loud", "text", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.Log.Level = tt.level
			cfg.Log.Format = tt.format

			err := validateConfig(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
