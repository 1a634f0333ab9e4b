package log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Level
// ---------------------------------------------------------------------------

func TestLevelString(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		expected string
	}{
		{name: "error", level: LevelError, expected: "error"},
		{name: "warn", level: LevelWarn, expected: "warn"},
		{name: "info", level: LevelInfo, expected: "info"},
		{name: "debug", level: LevelDebug, expected: "debug"},
		{name: "unknown", level: Level(42), expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Level
		wantErr  bool
	}{
		{name: "debug", input: "debug", expected: LevelDebug},
		{name: "info", input: "info", expected: LevelInfo},
		{name: "warn", input: "warn", expected: LevelWarn},
		{name: "warning alias", input: "warning", expected: LevelWarn},
		{name: "error", input: "error", expected: LevelError},
		{name: "mixed case", input: "DeBuG", expected: LevelDebug},
		{name: "unknown", input: "verbose", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	t.Parallel()

	// Severity decreases as the numeric value grows.
	assert.True(t, LevelError < LevelWarn)
	assert.True(t, LevelWarn < LevelInfo)
	assert.True(t, LevelInfo < LevelDebug)
}

// ---------------------------------------------------------------------------
// Fields
// ---------------------------------------------------------------------------

func TestFieldConstructors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	assert.Equal(t, Field{Key: "n", Value: 7}, Int("n", 7))
	assert.Equal(t, Field{Key: "ok", Value: true}, Bool("ok", true))
	assert.Equal(t, Field{Key: "any", Value: 1.5}, Any("any", 1.5))

	err := errors.New("boom")
	assert.Equal(t, Field{Key: "error", Value: err}, Err(err))
}

// ---------------------------------------------------------------------------
// NopLogger
// ---------------------------------------------------------------------------

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NewNop()

	assert.False(t, logger.Enabled(LevelError))
	assert.False(t, logger.Enabled(LevelDebug))

	assert.Same(t, logger, logger.With(String("k", "v")))
	assert.Same(t, logger, logger.WithGroup("group"))

	// Neither call may panic or block.
	logger.Log(context.Background(), LevelInfo, "dropped")
	require.NoError(t, logger.Sync(context.Background()))
}
