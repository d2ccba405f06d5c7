package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		debug       bool
		debugOn     bool
	}{
		{name: "production", environment: "production", debug: false, debugOn: false},
		{name: "production with debug", environment: "production", debug: true, debugOn: true},
		{name: "development", environment: "development", debug: false, debugOn: false},
		{name: "development with debug", environment: "development", debug: true, debugOn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.environment, tt.debug)
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
			assert.Equal(t, tt.debugOn, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}
