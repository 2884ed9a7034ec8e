package streamgen

import (
	"fmt"

	"github.com/teranos/streamgen/errors"
)

// Arity is the tagged classification of a callback's parameter list.
// It is one of ZeroArity, UnaryArity or NaryArity and is the single dispatch
// point for the stream element type and the wiring strategy.
type Arity interface {
	// Len returns the number of parameters
	Len() int
	arity()
}

// ZeroArity is a callback without parameters.
type ZeroArity struct{}

// UnaryArity is a callback with exactly one parameter.
type UnaryArity struct {
	Param Param
}

// NaryArity is a callback with two or more parameters, in declaration order.
type NaryArity struct {
	Params []Param
}

func (ZeroArity) Len() int { return 0 }

func (UnaryArity) Len() int { return 1 }

func (a NaryArity) Len() int { return len(a.Params) }

func (ZeroArity) arity()  {}
func (UnaryArity) arity() {}
func (NaryArity) arity()  {}

// Shape is the classified form of an event's callback type.
type Shape struct {
	// Callback is the handler type the accessors take
	Callback TypeRef

	// Arity carries the parameters with their names already escaped
	Arity Arity

	// Variadic reports whether the last parameter is variadic
	Variadic bool

	// Constructor is the adapter constructor name, empty when absent
	Constructor string
}

// HasAdapterConstructor reports whether the callback can be built by wrapping
// a handler with its adapter constructor instead of an inline lambda.
func (s Shape) HasAdapterConstructor() bool {
	return s.Constructor != ""
}

// Params returns the parameters regardless of arity.
func (s Shape) Params() []Param {
	switch a := s.Arity.(type) {
	case UnaryArity:
		return []Param{a.Param}
	case NaryArity:
		return a.Params
	default:
		return nil
	}
}

// Escaper rewrites identifiers that collide with reserved words of the
// target language. It must be idempotent.
type Escaper func(name string) string

// Classify derives the Shape of a callback type.
//
// It fails with an error wrapping errors.ErrUnusableShape when the type is
// not callback-shaped, has no signature, or returns values. Parameter names
// are made usable as identifiers: blank and missing names become argN,
// reserved words go through escape, and duplicates get a positional suffix.
func Classify(callback TypeRef, escape Escaper) (Shape, error) {
	if callback == nil {
		return Shape{}, errors.NewUnusableShapef("no callback type")
	}

	sig, ok := callback.Signature()
	if !ok || sig == nil {
		return Shape{}, errors.NewUnusableShapef("%s is not callback-shaped", callback.Expr(identity))
	}
	if len(sig.Results) > 0 {
		return Shape{}, errors.NewUnusableShapef("%s returns %d values", callback.Expr(identity), len(sig.Results))
	}

	params := make([]Param, len(sig.Params))
	seen := make(map[string]bool, len(sig.Params))
	for i, p := range sig.Params {
		if p.Type == nil {
			return Shape{}, errors.NewUnusableShapef("parameter %d of %s has no type", i, callback.Expr(identity))
		}
		name := p.Name
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		if escape != nil {
			name = escape(name)
		}
		if seen[name] {
			name = fmt.Sprintf("%s%d", name, i)
			if escape != nil {
				name = escape(name)
			}
		}
		seen[name] = true
		params[i] = Param{Name: name, Type: p.Type}
	}

	shape := Shape{
		Callback:    callback,
		Variadic:    sig.Variadic && len(params) > 0,
		Constructor: sig.Constructor,
	}
	switch len(params) {
	case 0:
		shape.Arity = ZeroArity{}
	case 1:
		shape.Arity = UnaryArity{Param: params[0]}
	default:
		shape.Arity = NaryArity{Params: params}
	}
	return shape, nil
}

// identity qualifies packages by their own name; used for messages only.
func identity(pkg Package) string {
	return pkg.Name
}
