package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"console output", &Config{Level: "info", Format: "console", Output: "console"}, false},
		{
			"file output",
			&Config{
				Level: "debug", Format: "json", Output: "file",
				File: FileConfig{Filename: filepath.Join(dir, "test.log"), MaxSize: 10, MaxAge: 7, MaxBackups: 3},
			},
			false,
		},
		{
			"both outputs",
			&Config{
				Level: "warn", Format: "json", Output: "both",
				File: FileConfig{Filename: filepath.Join(dir, "test2.log"), MaxSize: 10, MaxAge: 7, MaxBackups: 3},
			},
			false,
		},
		{"invalid level", &Config{Level: "loud", Format: "json", Output: "console"}, true},
		{"invalid format", &Config{Level: "info", Format: "xml", Output: "console"}, true},
		{"invalid output", &Config{Level: "info", Format: "json", Output: "syslog"}, true},
		{"file output without filename", &Config{Level: "info", Format: "json", Output: "file"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Info("test message")
			_ = logger.Sync()
		})
	}
}

func TestLogger_With(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)

	child := logger.With(zap.String("component", "splitter"))
	require.NotNil(t, child)
	child.Info("child logger message")
}

func TestLogger_Named(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)

	named := logger.Named("orchestrator")
	require.NotNil(t, named)
	named.Info("named logger message")
}

func TestRunIDContext(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)

	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))
	assert.NotNil(t, logger.WithContext(ctx))

	ctx = WithRunID(ctx, "run-42")
	assert.Equal(t, "run-42", GetRunID(ctx))
	assert.NotNil(t, logger.WithContext(ctx))

	ctx = ToContext(ctx, logger)
	assert.NotNil(t, FromContext(ctx))
}

func TestGlobalLogger(t *testing.T) {
	require.NotNil(t, L())
	require.NoError(t, InitGlobal(DefaultConfig()))

	Debug("debug message", zap.String("key", "value"))
	Info("info message", zap.String("key", "value"))
	Warn("warn message", zap.String("key", "value"))
	Error("error message", zap.String("key", "value"))
	_ = Sync()
}

func TestContextLogging(t *testing.T) {
	require.NoError(t, InitGlobal(DefaultConfig()))

	ctx := WithRunID(context.Background(), "run-7")
	DebugContext(ctx, "debug message")
	InfoContext(ctx, "info message")
	WarnContext(ctx, "warn message")
	ErrorContext(ctx, "error message")
	_ = Sync()
}
