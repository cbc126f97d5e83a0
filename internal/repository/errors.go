package repository

import (
	"errors"
	"fmt"
)

// Kind classifies a persistence failure independently of the driver.
type Kind int

const (
	// KindInternal is any failure that is not one of the kinds below.
	KindInternal Kind = iota
	// KindConflict is a unique constraint violation.
	KindConflict
	// KindNotFound means the requested row does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Error is returned by every store method that fails.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match on ErrConflict and ErrNotFound.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// KindOf returns the Kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return repoErr.Kind
	}
	return KindInternal
}

func conflict(op string, err error) error {
	return &Error{Kind: KindConflict, Op: op, Err: err}
}

func notFound(op string, err error) error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}
