package domain

import (
	"fmt"
	"strings"
)

// Level is the severity of a loggable event. Levels are ordered; an event is
// mirrored to the log chat only when its severity is at least the stored
// threshold.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Severity returns the ordinal position of the level (DEBUG < INFO < ERROR).
func (l Level) Severity() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelError:
		return 2
	default:
		return -1
	}
}

// ParseLevel converts user input into a Level, accepting any casing.
func ParseLevel(value string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(value))) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("unsupported log level %q", value)
	}
}
