package buildconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField indicates a required field is absent or empty
	ErrMissingField = errors.New("missing field")
	// ErrInvalidPattern indicates a file pattern or filename template is unusable
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrDuplicateEntryName indicates two entries share a name
	ErrDuplicateEntryName = errors.New("duplicate entry name")
	// ErrInvalidValue indicates a field holds a value outside its allowed set
	ErrInvalidValue = errors.New("invalid value")
	// ErrEntryNotFound indicates an entry path does not exist in the source filesystem
	ErrEntryNotFound = errors.New("entry not found")
)

// Kind classifies a ValidationError.
type Kind int

const (
	MissingField Kind = iota + 1
	InvalidPattern
	DuplicateEntryName
	InvalidValue
	EntryNotFound
)

func (k Kind) String() string {
	switch k {
	case MissingField:
		return "MissingField"
	case InvalidPattern:
		return "InvalidPattern"
	case DuplicateEntryName:
		return "DuplicateEntryName"
	case InvalidValue:
		return "InvalidValue"
	case EntryNotFound:
		return "EntryNotFound"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case MissingField:
		return ErrMissingField
	case InvalidPattern:
		return ErrInvalidPattern
	case DuplicateEntryName:
		return ErrDuplicateEntryName
	case InvalidValue:
		return ErrInvalidValue
	case EntryNotFound:
		return ErrEntryNotFound
	default:
		return nil
	}
}

// ValidationError names the offending field of a rejected configuration.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Field, e.Kind.sentinel())
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel error for the error's kind.
func (e *ValidationError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors returns every ValidationError contained in err, which may be
// a single error or the joined result of Resolve.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if ve, ok := err.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

type errorList []error

func (l *errorList) add(kind Kind, field, reason string, cause error) {
	*l = append(*l, &ValidationError{Kind: kind, Field: field, Reason: reason, Err: cause})
}

func (l errorList) err() error {
	return errors.Join(l...)
}
