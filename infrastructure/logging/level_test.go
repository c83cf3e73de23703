package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for i, name := range []string{"error", "warn", "info", "http", "verbose", "debug", "silly"} {
		level, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, Level(i), level)
		assert.Equal(t, name, level.String())
	}

	level, err := ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	_, err = ParseLevel("nothing")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestLevel_Enabled(t *testing.T) {
	tests := []struct {
		level     Level
		threshold Level
		want      bool
	}{
		{LevelError, LevelError, true},
		{LevelError, LevelSilly, true},
		{LevelWarn, LevelError, false},
		{LevelDebug, LevelInfo, false},
		{LevelInfo, LevelDebug, true},
		{LevelSilly, LevelDebug, false},
		{LevelSilly, LevelSilly, true},
		{Level(42), LevelSilly, false},
	}

	for _, tt := range tests {
		t.Run(tt.level.String()+"@"+tt.threshold.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.Enabled(tt.threshold))
		})
	}
}

func TestLevel_SlogRoundTrip(t *testing.T) {
	levels := Levels()
	for i, l := range levels {
		assert.Equal(t, l, levelFromSlog(l.SlogLevel()))
		if i > 0 {
			assert.Less(t, l.SlogLevel(), levels[i-1].SlogLevel(), "slog levels must keep the facade order")
		}
	}

	assert.Equal(t, LevelError, levelFromSlog(slog.LevelError+4))
	assert.Equal(t, LevelSilly, levelFromSlog(slog.Level(-100)))
}

func TestLevel_String_Invalid(t *testing.T) {
	assert.Equal(t, "level(9)", Level(9).String())
	assert.False(t, Level(-1).Valid())
}
