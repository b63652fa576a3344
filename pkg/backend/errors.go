package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies backend failures
type ErrorKind int

const (
	// KindMemory covers allocation failures
	KindMemory ErrorKind = iota
	// KindLaunch covers kernel execution failures
	KindLaunch
	// KindInvalidArgument covers misuse: bad shapes, freed or foreign buffers
	KindInvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case KindMemory:
		return "Memory"
	case KindLaunch:
		return "Launch"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}

// BackendError is a device failure with the operation that raised it
type BackendError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s error in %s: %s (caused by: %v)", e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("backend %s error in %s: %s", e.Kind, e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel errors below by kind
func (e *BackendError) Is(target error) bool {
	t, ok := target.(*BackendError)
	return ok && t.Op == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is. They carry no operation so that they match any
// error of their kind.
var (
	ErrOutOfMemory     = &BackendError{Kind: KindMemory, Message: "out of memory"}
	ErrKernelLaunch    = &BackendError{Kind: KindLaunch, Message: "kernel launch failed"}
	ErrInvalidArgument = &BackendError{Kind: KindInvalidArgument, Message: "invalid argument"}
)

func newMemoryError(op, message string) error {
	return &BackendError{Kind: KindMemory, Op: op, Message: message}
}

func newLaunchError(op, message string, err error) error {
	return &BackendError{Kind: KindLaunch, Op: op, Message: message, Err: err}
}

func newInvalidArgError(op, message string) error {
	return &BackendError{Kind: KindInvalidArgument, Op: op, Message: message}
}

// IsBackendError reports whether err originated from a backend
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
