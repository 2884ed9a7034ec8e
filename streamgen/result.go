package streamgen

import (
	"fmt"

	"github.com/teranos/streamgen/errors"
)

// WrapperSpec is the synthesized adapter for one event.
type WrapperSpec struct {
	// Event the adapter was generated for
	Event Event

	// ElementType is the stream element type as written in the unit
	ElementType string

	// Text is the complete declaration of the adapter
	Text string
}

// Unit is one generated source file: the adapters of a single interface.
// It only lives between assembly and emission.
type Unit struct {
	// Interface is the qualified name of the interface the unit adapts
	Interface string

	ShortName string
	TypeName  string
	Filename  string

	// Source is the unit text; gofmt-formatted once it passed validation
	Source []byte
}

// UnitSource is what a Target needs to render a whole unit.
type UnitSource struct {
	// Package the unit is declared in
	Package Package

	TypeName string
	Owner    Interface
	Imports  []Import
	Wrappers []WrapperSpec
}

// Rejection describes a unit that failed syntax validation. It unwraps to
// errors.ErrRejected.
type Rejection struct {
	Filename string
	Line     int
	Column   int

	// Reason is the first syntax error the parser reported
	Reason string

	// Count is the total number of syntax errors
	Count int
}

func (r *Rejection) Error() string {
	if r.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", r.Filename, r.Line, r.Column, r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Filename, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return errors.ErrRejected
}
