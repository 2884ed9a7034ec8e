// Package streamgen synthesizes stream adapters for event-exposing interfaces.
//
// # Architecture
//
// The package uses a two-layer design, like a compiler front end feeding a
// back end:
//  1. Language-agnostic analysis (this package) classifies callback shapes,
//     collects imports and drives the per-interface pipeline.
//  2. A Target (streamgen/golang) renders adapters and whole units as source
//     text and validates them with the target language's own parser.
//
// The catalog of interfaces is supplied by a Source (see package catalog);
// the pipeline only ever sees the TypeRef capability interface, never a live
// type checker, so tests can feed synthetic types.
//
// # Pipeline
//
// For every interface the Driver runs:
//
//	CollectImports -> Classify (per event) -> Target.Wrapper -> Assemble -> Target.Validate
//
// and then emits the unit or reports a diagnostic. Interfaces are isolated
// from each other: a failure in one never stops the others.
package streamgen

import (
	"strings"
)

// Package identifies a Go package by import path and package name.
type Package struct {
	Path string
	Name string
}

// IsZero reports whether p refers to no package (predeclared or unnamed types).
func (p Package) IsZero() bool {
	return p.Path == ""
}

// Qualifier returns the name under which a package is referenced in generated
// source. An empty result means the package is the local package and its
// types are written unqualified.
type Qualifier func(pkg Package) string

// TypeRef is an opaque, resolved type identity.
//
// It is only ever interrogated for the capabilities below; the semantic model
// behind it (go/types, a manifest file, a test fixture) stays outside the
// generator.
type TypeRef interface {
	// Package returns the declaring package of a named type, or the zero
	// Package for predeclared and unnamed types.
	Package() Package

	// Expr renders the type as a Go type expression, qualifying package
	// names through q.
	Expr(q Qualifier) string

	// Args returns the types nested directly inside this one: the type
	// arguments of an instantiated generic type and the element, key,
	// parameter and result types of composite types.
	Args() []TypeRef

	// Signature returns the invocation signature when the type is
	// callback-shaped (a func type, named or not).
	Signature() (*Signature, bool)
}

// Signature is the invocation signature of a callback-shaped type.
type Signature struct {
	// Params in declaration order. The last one holds the slice type when
	// Variadic is set.
	Params []Param

	// Variadic reports whether the last parameter is variadic
	Variadic bool

	// Results of the callback; adapters only support callbacks without results
	Results []TypeRef

	// Constructor names the adapter constructor: an exported function in the
	// callback's package taking exactly one callback-shaped argument and
	// returning the callback type. Empty when there is none.
	Constructor string
}

// Param is a single callback parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Event is one subscribe/unsubscribe accessor pair on an interface.
type Event struct {
	// Name of the event, e.g. "Pressed"
	Name string

	// Callback is the handler type both accessors take
	Callback TypeRef

	// Subscribe and Unsubscribe are the accessor method names, e.g.
	// "AddPressed" and "RemovePressed". Empty when the accessor is missing.
	Subscribe   string
	Unsubscribe string
}

// Valid reports whether the event can reach the wrapper factory.
// Invalid events are skipped without a diagnostic.
func (e Event) Valid() bool {
	if strings.TrimSpace(e.Name) == "" || e.Subscribe == "" || e.Unsubscribe == "" {
		return false
	}
	if e.Callback == nil {
		return false
	}
	_, ok := e.Callback.Signature()
	return ok
}

// Interface is one catalog entry: an interface and the events declared
// directly on it (embedded interfaces contribute their own entries).
type Interface struct {
	Package Package
	Name    string
	Events  []Event
}

// QualifiedName returns "pkgname.Name", used in diagnostics and logs.
func (i Interface) QualifiedName() string {
	if i.Package.Name == "" {
		return i.Name
	}
	return i.Package.Name + "." + i.Name
}

// Expr renders the interface type as seen from the generated unit.
func (i Interface) Expr(q Qualifier) string {
	if i.Package.IsZero() {
		return i.Name
	}
	if name := q(i.Package); name != "" {
		return name + "." + i.Name
	}
	return i.Name
}

// ValidEvents returns the events that pass Event.Valid, in catalog order.
func (i Interface) ValidEvents() []Event {
	events := make([]Event, 0, len(i.Events))
	for _, ev := range i.Events {
		if ev.Valid() {
			events = append(events, ev)
		}
	}
	return events
}
