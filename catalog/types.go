package catalog

import (
	"strings"

	"github.com/teranos/streamgen/streamgen"
)

type kind int

const (
	kindBasic kind = iota
	kindNamed
	kindSlice
	kindArray
	kindPointer
	kindMap
	kindChan
	kindFunc
	kindStruct
	kindInterface
)

// Type is a streamgen.TypeRef built without a type checker, from a manifest
// or by hand in tests.
type Type struct {
	kind  kind
	pkg   streamgen.Package
	name  string
	elems []streamgen.TypeRef

	// array length, channel direction prefix, or struct field names
	extra  string
	fields []string

	sig *streamgen.Signature
}

// Basic returns a predeclared type such as int, string, error or any.
func Basic(name string) *Type {
	return &Type{kind: kindBasic, name: name}
}

// Named returns a named type declared in pkg, instantiated with typeArgs
// when it is generic.
func Named(pkg streamgen.Package, name string, typeArgs ...streamgen.TypeRef) *Type {
	if pkg.Name == "" && pkg.Path != "" {
		pkg.Name = streamgen.DefaultPackageName(pkg.Path)
	}
	return &Type{kind: kindNamed, pkg: pkg, name: name, elems: typeArgs}
}

// Slice returns []elem.
func Slice(elem streamgen.TypeRef) *Type {
	return &Type{kind: kindSlice, elems: []streamgen.TypeRef{elem}}
}

// Array returns [n]elem; n is kept as written.
func Array(n string, elem streamgen.TypeRef) *Type {
	return &Type{kind: kindArray, extra: n, elems: []streamgen.TypeRef{elem}}
}

// Pointer returns *elem.
func Pointer(elem streamgen.TypeRef) *Type {
	return &Type{kind: kindPointer, elems: []streamgen.TypeRef{elem}}
}

// Map returns map[key]value.
func Map(key, value streamgen.TypeRef) *Type {
	return &Type{kind: kindMap, elems: []streamgen.TypeRef{key, value}}
}

// Chan returns a channel type; dir is "chan", "<-chan" or "chan<-".
func Chan(dir string, elem streamgen.TypeRef) *Type {
	return &Type{kind: kindChan, extra: dir, elems: []streamgen.TypeRef{elem}}
}

// Struct returns an anonymous struct type with the given fields.
func Struct(names []string, types []streamgen.TypeRef) *Type {
	return &Type{kind: kindStruct, fields: names, elems: types}
}

// EmptyInterface returns interface{}.
func EmptyInterface() *Type {
	return &Type{kind: kindInterface}
}

// Func returns an unnamed func type with signature sig.
func Func(sig *streamgen.Signature) *Type {
	t := &Type{kind: kindFunc, sig: sig}
	for _, p := range sig.Params {
		t.elems = append(t.elems, p.Type)
	}
	t.elems = append(t.elems, sig.Results...)
	return t
}

// WithSignature marks a named type as callback-shaped: its underlying type
// is a func type with signature sig.
func (t *Type) WithSignature(sig *streamgen.Signature) *Type {
	t.sig = sig
	return t
}

// Package returns the declaring package of named types.
func (t *Type) Package() streamgen.Package {
	if t.kind == kindNamed {
		return t.pkg
	}
	return streamgen.Package{}
}

// Args returns the nested types
func (t *Type) Args() []streamgen.TypeRef {
	return t.elems
}

// Signature returns the callback signature of func types and of named
// types marked with WithSignature.
func (t *Type) Signature() (*streamgen.Signature, bool) {
	if t.sig == nil {
		return nil, false
	}
	return t.sig, true
}

// Expr renders the type as a Go type expression
func (t *Type) Expr(q streamgen.Qualifier) string {
	switch t.kind {
	case kindBasic:
		return t.name
	case kindNamed:
		name := t.name
		if !t.pkg.IsZero() {
			if qual := q(t.pkg); qual != "" {
				name = qual + "." + name
			}
		}
		if len(t.elems) > 0 {
			name += "[" + join(t.elems, q) + "]"
		}
		return name
	case kindSlice:
		return "[]" + t.elems[0].Expr(q)
	case kindArray:
		return "[" + t.extra + "]" + t.elems[0].Expr(q)
	case kindPointer:
		return "*" + t.elems[0].Expr(q)
	case kindMap:
		return "map[" + t.elems[0].Expr(q) + "]" + t.elems[1].Expr(q)
	case kindChan:
		elem := t.elems[0].Expr(q)
		// chan (<-chan T) needs parentheses to bind the inner direction
		if c, ok := t.elems[0].(*Type); ok && t.extra == "chan" && c.kind == kindChan && c.extra == "<-chan" {
			elem = "(" + elem + ")"
		}
		return t.extra + " " + elem
	case kindStruct:
		parts := make([]string, len(t.elems))
		for i, e := range t.elems {
			parts[i] = t.fields[i] + " " + e.Expr(q)
		}
		if len(parts) == 0 {
			return "struct{}"
		}
		return "struct{ " + strings.Join(parts, "; ") + " }"
	case kindInterface:
		return "interface{}"
	case kindFunc:
		return funcExpr(t.sig, q)
	default:
		return t.name
	}
}

func funcExpr(sig *streamgen.Signature, q streamgen.Qualifier) string {
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		if sig.Variadic && i == len(sig.Params)-1 {
			params[i] = "..." + strings.TrimPrefix(p.Type.Expr(q), "[]")
			if args := p.Type.Args(); len(args) == 1 {
				params[i] = "..." + args[0].Expr(q)
			}
			continue
		}
		params[i] = p.Type.Expr(q)
	}
	out := "func(" + strings.Join(params, ", ") + ")"
	switch len(sig.Results) {
	case 0:
	case 1:
		out += " " + sig.Results[0].Expr(q)
	default:
		out += " (" + join(sig.Results, q) + ")"
	}
	return out
}

func join(types []streamgen.TypeRef, q streamgen.Qualifier) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.Expr(q)
	}
	return strings.Join(parts, ", ")
}
