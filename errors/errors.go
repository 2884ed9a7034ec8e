// Package errors provides error handling for streamgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for users
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadCatalog(); err != nil {
//	    return errors.Wrap(err, "failed to load catalog")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "run 'streamgen init' to create streamgen.toml")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions and panics
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors shared by the generator packages.
// Use these with errors.Is() and wrap them with errors.Wrap() to add context.
var (
	// ErrUnusableShape marks an event whose callback cannot be adapted to a stream.
	// It never escapes the pipeline as a diagnostic; the event is skipped.
	ErrUnusableShape = New("unusable callback shape")

	// ErrRejected marks a generated unit that failed syntax validation
	ErrRejected = New("generated unit rejected")

	// ErrInvalidConfig indicates the configuration failed validation
	ErrInvalidConfig = New("invalid configuration")

	// ErrCatalog indicates the interface catalog could not be loaded
	ErrCatalog = New("catalog unavailable")
)

// IsUnusableShape checks if an error is or wraps ErrUnusableShape
func IsUnusableShape(err error) bool {
	return err != nil && Is(err, ErrUnusableShape)
}

// IsRejected checks if an error is or wraps ErrRejected
func IsRejected(err error) bool {
	return err != nil && Is(err, ErrRejected)
}

// NewUnusableShapef creates an unusable-shape error with a formatted reason
func NewUnusableShapef(format string, args ...interface{}) error {
	return Wrap(ErrUnusableShape, Newf(format, args...).Error())
}
