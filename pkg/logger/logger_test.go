package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewParsesLevel(t *testing.T) {
	log, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn", "console")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json")
	require.Error(t, err)
}

func TestNamedNilFallsBackToNop(t *testing.T) {
	log := Named(nil, "svc.pipeline")
	require.NotNil(t, log)
	log.Info("discarded")
}
