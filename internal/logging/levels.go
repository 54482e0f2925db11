package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug for per-record detail such as
// individual BM25 scores. Value: -2 (Debug is -1, Info is 0)
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name, supporting "trace".
// Matching is case-insensitive and ignores surrounding whitespace.
func LevelFromString(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// LevelName returns the display name of lvl, including "trace".
func LevelName(lvl zapcore.Level) string {
	if lvl == TraceLevel {
		return "trace"
	}
	return lvl.String()
}
