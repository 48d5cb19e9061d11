package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumapp/marketplace/config"
)

func TestNilLoggerSafety(t *testing.T) {
	log = nil
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	// None of these may panic before Init.
	Debug("test debug")
	Info("test info")
	Warn("test warn")
	Error("test error")

	assert.NotNil(t, With(zap.String("key", "value")))
	assert.NotNil(t, WithRequestID("test-id"))
}

func TestInitDevelopment(t *testing.T) {
	cfg := &config.LogConfig{Level: "debug", Output: "stdout"}
	require.NoError(t, Init(cfg, "development"))
	defer Sync()

	require.NotNil(t, Get())
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	Info("logger ready", zap.String("env", "development"))
}

func TestInitFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: filepath.Join(dir, "nested", "app.log"),
	}
	require.NoError(t, Init(cfg, "production"))
	defer Sync()

	Info("written to file")
	require.NoError(t, Sync())

	// The log directory is created on demand.
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestUpdateLevel(t *testing.T) {
	require.NoError(t, Init(&config.LogConfig{Level: "info", Output: "stdout"}, "production"))
	defer Sync()

	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
	UpdateLevel("debug")
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
	UpdateLevel("warn")
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}
