package timeline

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on it.
type Kind int

const (
	KindUnknown Kind = iota
	SourceNotFound
	CorruptSource
	SchemaMismatch
	WriteFailure
)

func (k Kind) String() string {
	switch k {
	case SourceNotFound:
		return "source not found"
	case CorruptSource:
		return "corrupt source"
	case SchemaMismatch:
		return "schema mismatch"
	case WriteFailure:
		return "write failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the step that failed, Path the
// file involved (may be empty).
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error with a formatted cause.
func Errorf(kind Kind, op, path, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
