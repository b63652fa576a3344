package functional

import (
	"errors"
	"fmt"
)

// Specification error causes
var (
	ErrUnknownFunctional = errors.New("unknown functional")
	ErrMissingOrder      = errors.New("missing order parameter for Hermite P-functional")
	ErrUnparseableOrder  = errors.New("unparseable order parameter for Hermite P-functional")
	ErrMixedRegime       = errors.New("cannot mix regular and orthonormal P-functionals")
	ErrNoTFunctionals    = errors.New("at least one T-functional is required")
)

// SpecError reports a functional selection that cannot be run
type SpecError struct {
	Family string // "T" or "P"
	Token  string // offending token, if any
	Cause  error
}

func (e *SpecError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid %s-functional selection: %v", e.Family, e.Cause)
	}
	return fmt.Sprintf("invalid %s-functional %q: %v", e.Family, e.Token, e.Cause)
}

// Unwrap exposes the cause to errors.Is
func (e *SpecError) Unwrap() error {
	return e.Cause
}

// IsSpecError reports whether err is a specification error
func IsSpecError(err error) bool {
	var se *SpecError
	return errors.As(err, &se)
}
