// Package fault classifies the recoverable failures of a scan unit.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure
type Kind string

const (
	DataUnavailable      Kind = "data_unavailable"
	Computation          Kind = "computation"
	PredictorUnavailable Kind = "predictor_unavailable"
	ExternalService      Kind = "external_service"
	Validation           Kind = "validation"
)

// Error carries the kind and the operation that failed
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, fault.E(kind, "", nil))
// and errors.Is(err, ErrValidation) both work.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Op == "" && t.Kind == e.Kind
	}
	return false
}

// E builds a classified error
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinels usable with errors.Is
var (
	ErrDataUnavailable      = &Error{Kind: DataUnavailable}
	ErrComputation          = &Error{Kind: Computation}
	ErrPredictorUnavailable = &Error{Kind: PredictorUnavailable}
	ErrExternalService      = &Error{Kind: ExternalService}
	ErrValidation           = &Error{Kind: Validation}
)

// KindOf returns the kind of err, or "" if it is not classified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
