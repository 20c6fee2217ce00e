// SPDX-License-Identifier: MPL-2.0

package diag

import (
	"errors"
	"fmt"
)

const (
	LevelDebug   Level = "debug"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelTrace   Level = "trace"
	LevelVerbose Level = "verbose"
	LevelWarn    Level = "warn"

	BundlerDebug BundlerLevel = "debug"
	BundlerWarn  BundlerLevel = "warn"
	BundlerInfo  BundlerLevel = "info"
	BundlerError BundlerLevel = "error"
)

// ErrInvalidLevel is the sentinel error wrapped by InvalidLevelError.
var ErrInvalidLevel = errors.New("invalid log level")

type (
	// Level is the engine's log-level vocabulary.
	Level string

	// BundlerLevel is the narrower vocabulary understood by the bundler.
	BundlerLevel string

	InvalidLevelError struct {
		Value string
	}
)

// ParseLevel validates s as a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if ok, errs := l.IsValid(); !ok {
		return "", errs[0]
	}
	return l, nil
}

func (l Level) String() string { return string(l) }

// IsValid returns whether l is one of the six engine levels.
func (l Level) IsValid() (bool, []error) {
	switch l {
	case LevelDebug, LevelError, LevelInfo, LevelTrace, LevelVerbose, LevelWarn:
		return true, nil
	default:
		return false, []error{&InvalidLevelError{Value: string(l)}}
	}
}

// ToBundler maps l onto the bundler vocabulary. trace and verbose collapse
// to debug.
func (l Level) ToBundler() BundlerLevel {
	switch l {
	case LevelError:
		return BundlerError
	case LevelWarn:
		return BundlerWarn
	case LevelInfo:
		return BundlerInfo
	default:
		return BundlerDebug
	}
}

// LevelFromBundler maps a bundler level back to the engine vocabulary.
// Unknown values become info.
func LevelFromBundler(b BundlerLevel) Level {
	switch b {
	case BundlerDebug:
		return LevelDebug
	case BundlerWarn:
		return LevelWarn
	case BundlerError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Rank orders levels by severity: trace < verbose < debug < info < warn < error.
func (l Level) Rank() int {
	switch l {
	case LevelTrace:
		return 0
	case LevelVerbose:
		return 1
	case LevelDebug:
		return 2
	case LevelInfo:
		return 3
	case LevelWarn:
		return 4
	case LevelError:
		return 5
	default:
		return 3
	}
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, error, info, trace, verbose, warn)", e.Value)
}

func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }
