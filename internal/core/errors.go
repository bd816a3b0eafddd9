package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMalformedDate     = errors.New("malformed date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid type")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyCounterparty = errors.New("empty counterparty")
	ErrEmptyOwner        = errors.New("empty owner")
	ErrAlreadyPaid       = errors.New("record already paid")
	ErrNotFound          = errors.New("record not found")
)

// DataAccessError wraps every failure reported by a record store. Callers
// propagate it unchanged; the presentation layer decides whether to offer a
// retry.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// NewDataAccessError returns nil when err is nil and does not double wrap.
func NewDataAccessError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// IsDataAccess reports whether err came from a record store.
func IsDataAccess(err error) bool {
	var dae *DataAccessError
	return errors.As(err, &dae)
}

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidArgument, ErrMalformedDate, ErrInvalidAmount, ErrInvalidType,
		ErrEmptyDescription, ErrEmptyCategory, ErrEmptyCounterparty, ErrEmptyOwner,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
