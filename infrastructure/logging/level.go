package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log severity. Lower values are more urgent.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelHTTP
	LevelVerbose
	LevelDebug
	LevelSilly
)

var levelNames = [...]string{"error", "warn", "info", "http", "verbose", "debug", "silly"}

// Levels returns every recognized level from most to least urgent.
func Levels() []Level {
	return []Level{LevelError, LevelWarn, LevelInfo, LevelHTTP, LevelVerbose, LevelDebug, LevelSilly}
}

// ParseLevel resolves a level name, case-insensitively.
func ParseLevel(name string) (Level, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, known := range levelNames {
		if n == known {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
}

// Valid reports whether l is one of the seven recognized levels.
func (l Level) Valid() bool {
	return l >= LevelError && l <= LevelSilly
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Enabled reports whether a message at level l passes a sink configured at threshold.
func (l Level) Enabled(threshold Level) bool {
	return l.Valid() && l <= threshold
}

// SlogLevel maps l onto the slog scale so handlers order records the same way.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelHTTP:
		return slog.LevelInfo - 1
	case LevelVerbose:
		return slog.LevelInfo - 2
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

// levelFromSlog is the inverse of SlogLevel, rounding towards the more urgent level.
func levelFromSlog(sl slog.Level) Level {
	for _, l := range Levels() {
		if sl >= l.SlogLevel() {
			return l
		}
	}
	return LevelSilly
}

// replaceLevelAttr prints facade level names instead of "DEBUG-2" style slog names.
func replaceLevelAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if sl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelFromSlog(sl).String())
		}
	}
	return a
}
