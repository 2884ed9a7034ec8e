// Package golang renders stream adapters as Go source.
//
// Every event becomes a method on the unit's container type:
//
//	func (ButtonStreamExtensions) OnPressedAsStream(ctx context.Context, self ui.IButton) *stream.Stream[int]
//
// The method body is a single return of a stream constructor from package
// stream: FromAction for callbacks without parameters and FromEvent for
// everything else. Callbacks with several parameters emit a record type
// declared next to the adapter, holding the arguments in declaration order:
//
//	type CanvasMovedArgs struct {
//		From geom.Point
//		To   geom.Point
//	}
package golang

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/streamgen"
	"github.com/teranos/streamgen/streamgen/util"
)

// Generator local identifiers. Parameter names and import names never use them.
const (
	localCtx     = "ctx"
	localSelf    = "self"
	localHandler = "h"
)

// DefaultStreamPackage is the runtime package generated adapters target.
var DefaultStreamPackage = streamgen.Package{Path: "github.com/teranos/streamgen/stream", Name: "stream"}

var contextPackage = streamgen.Package{Path: "context", Name: "context"}

// CanaryFilename is the file name of the marker unit.
const CanaryFilename = "streamgen.g.go"

// Generator implements streamgen.Target for Go.
type Generator struct {
	stream streamgen.Package
}

// Option configures a Generator
type Option func(*Generator)

// WithStreamPackage targets a different stream runtime package. It must
// provide Stream, Unit, FromEvent and FromAction with the signatures of
// package stream.
func WithStreamPackage(pkg streamgen.Package) Option {
	return func(g *Generator) {
		if pkg.Name == "" {
			pkg.Name = streamgen.DefaultPackageName(pkg.Path)
		}
		g.stream = pkg
	}
}

// NewGenerator creates a Go generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{stream: DefaultStreamPackage}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Language returns "go"
func (g *Generator) Language() string {
	return "go"
}

// FileExtension returns "go"
func (g *Generator) FileExtension() string {
	return "go"
}

// Baseline returns context and the stream package
func (g *Generator) Baseline() []streamgen.Package {
	return []streamgen.Package{contextPackage, g.stream}
}

// Locals returns the identifiers adapters declare
func (g *Generator) Locals() []string {
	return []string{localCtx, localSelf, localHandler}
}

// Wrapper synthesizes the adapter method for one event
func (g *Generator) Wrapper(req streamgen.WrapperRequest) (streamgen.WrapperSpec, error) {
	q := req.Qualifier
	ev := req.Event
	shape := req.Shape

	callback := shape.Callback.Expr(q)
	streamPkg := qualify(q, g.stream)
	elem, err := g.elementType(req)
	if err != nil {
		return streamgen.WrapperSpec{}, err
	}

	var call string
	switch a := shape.Arity.(type) {
	case streamgen.ZeroArity:
		call = fmt.Sprintf("%sFromAction[%s](%s,\n%s,\n%s,\n)",
			streamPkg, callback, localCtx,
			accessor(callback, ev.Subscribe),
			accessor(callback, ev.Unsubscribe))
	case streamgen.UnaryArity, streamgen.NaryArity:
		call = fmt.Sprintf("%sFromEvent[%s, %s](%s,\n%s,\n%s,\n%s,\n)",
			streamPkg, callback, elem, localCtx,
			g.conversion(shape, callback, elem, q),
			accessor(callback, ev.Subscribe),
			accessor(callback, ev.Unsubscribe))
	default:
		return streamgen.WrapperSpec{}, errors.AssertionFailedf("unhandled arity %T", a)
	}

	var b strings.Builder
	method := streamgen.MethodName(ev.Name)
	owner := req.Owner.Expr(q)
	if a, ok := shape.Arity.(streamgen.NaryArity); ok {
		fmt.Fprintf(&b, "// %s carries the arguments of one %s event of %s.\n", elem, ev.Name, owner)
		fmt.Fprintf(&b, "type %s %s\n\n", elem, recordType(a.Params, q))
	}
	fmt.Fprintf(&b, "// %s streams the %s event of %s.\n", method, ev.Name, owner)
	fmt.Fprintf(&b, "// Subscribing calls %s; cancelling calls %s.\n", ev.Subscribe, ev.Unsubscribe)
	fmt.Fprintf(&b, "func (%s) %s(%s %sContext, %s %s) *%sStream[%s] {\n",
		req.Container, method, localCtx, contextQualifier(q), localSelf, owner, streamPkg, elem)
	fmt.Fprintf(&b, "return %s\n", call)
	b.WriteString("}\n")

	return streamgen.WrapperSpec{Event: ev, ElementType: elem, Text: b.String()}, nil
}

// elementType returns the stream element type for a shape
func (g *Generator) elementType(req streamgen.WrapperRequest) (string, error) {
	switch a := req.Shape.Arity.(type) {
	case streamgen.ZeroArity:
		return qualify(req.Qualifier, g.stream) + "Unit", nil
	case streamgen.UnaryArity:
		return a.Param.Type.Expr(req.Qualifier), nil
	case streamgen.NaryArity:
		return streamgen.ArgsTypeName(req.ShortName, req.Event.Name), nil
	default:
		return "", errors.AssertionFailedf("unhandled arity %T", a)
	}
}

// conversion renders the function FromEvent uses to turn an element handler
// into a callback value.
func (g *Generator) conversion(shape streamgen.Shape, callback, elem string, q streamgen.Qualifier) string {
	params := shape.Params()
	sink := fmt.Sprintf("%s func(%s)", localHandler, elem)

	// A constructor taking the handler as-is needs no lambda
	if _, unary := shape.Arity.(streamgen.UnaryArity); unary && shape.HasAdapterConstructor() && !shape.Variadic {
		return fmt.Sprintf("func(%s) %s { return %s(%s) }",
			sink, callback, constructor(shape, q), localHandler)
	}

	var forward string
	switch len(params) {
	case 1:
		forward = params[0].Name
	default:
		names := make([]string, len(params))
		for i, p := range params {
			names[i] = p.Name
		}
		forward = fmt.Sprintf("%s{%s}", elem, strings.Join(names, ", "))
	}
	lambda := fmt.Sprintf("func(%s) { %s(%s) }", paramList(params, shape.Variadic, q), localHandler, forward)

	if shape.HasAdapterConstructor() {
		return fmt.Sprintf("func(%s) %s { return %s(%s) }", sink, callback, constructor(shape, q), lambda)
	}
	return fmt.Sprintf("func(%s) %s { return %s }", sink, callback, lambda)
}

// accessor renders the subscribe or unsubscribe argument
func accessor(callback, method string) string {
	return fmt.Sprintf("func(%s %s) { %s.%s(%s) }", localHandler, callback, localSelf, method, localHandler)
}

// constructor renders the qualified adapter constructor name
func constructor(shape streamgen.Shape, q streamgen.Qualifier) string {
	if pkg := shape.Callback.Package(); !pkg.IsZero() {
		if name := q(pkg); name != "" {
			return name + "." + shape.Constructor
		}
	}
	return shape.Constructor
}

// paramList renders "x int, y ...string"
func paramList(params []streamgen.Param, variadic bool, q streamgen.Qualifier) string {
	parts := make([]string, len(params))
	for i, p := range params {
		typ := p.Type.Expr(q)
		if variadic && i == len(params)-1 {
			typ = "..." + sliceElem(p.Type, q)
		}
		parts[i] = p.Name + " " + typ
	}
	return strings.Join(parts, ", ")
}

// sliceElem returns the element type of the slice a variadic parameter holds
func sliceElem(t streamgen.TypeRef, q streamgen.Qualifier) string {
	if args := t.Args(); len(args) == 1 {
		return args[0].Expr(q)
	}
	return strings.TrimPrefix(t.Expr(q), "[]")
}

// recordType renders the struct carrying several arguments
func recordType(params []streamgen.Param, q streamgen.Qualifier) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	fields := util.FieldNames(names)

	var b strings.Builder
	b.WriteString("struct {\n")
	for i, p := range params {
		fmt.Fprintf(&b, "%s %s\n", fields[i], p.Type.Expr(q))
	}
	b.WriteString("}")
	return b.String()
}

// qualify returns "name." for pkg, or "" when pkg is the local package
func qualify(q streamgen.Qualifier, pkg streamgen.Package) string {
	if name := q(pkg); name != "" {
		return name + "."
	}
	return ""
}

func contextQualifier(q streamgen.Qualifier) string {
	return qualify(q, contextPackage)
}

// RenderUnit renders a whole unit
func (g *Generator) RenderUnit(src streamgen.UnitSource) ([]byte, error) {
	pkgName, err := packageName(src.Package)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	writeHeader(&b, pkgName)

	if len(src.Imports) > 0 {
		b.WriteString("import (\n")
		for _, imp := range src.Imports {
			if imp.Aliased {
				fmt.Fprintf(&b, "\t%s %q\n", imp.Name, imp.Path)
			} else {
				fmt.Fprintf(&b, "\t%q\n", imp.Path)
			}
		}
		b.WriteString(")\n\n")
	}

	fmt.Fprintf(&b, "// %s adapts the events of %s to streams.\n", src.TypeName, src.Owner.QualifiedName())
	fmt.Fprintf(&b, "type %s struct{}\n", src.TypeName)
	for _, w := range src.Wrappers {
		b.WriteString("\n")
		b.WriteString(w.Text)
	}
	return b.Bytes(), nil
}

// RenderCanary renders the marker unit: a file with nothing but the
// generated-code header and a package clause.
func (g *Generator) RenderCanary(local streamgen.Package) (*streamgen.Unit, error) {
	pkgName, err := packageName(local)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	writeHeader(&b, pkgName)
	src, err := g.Validate(CanaryFilename, b.Bytes())
	if err != nil {
		return nil, err
	}
	return &streamgen.Unit{Filename: CanaryFilename, Source: src}, nil
}

func writeHeader(b *bytes.Buffer, pkgName string) {
	b.WriteString(streamgen.GeneratedHeaderPrefix + ". DO NOT EDIT.\n\n")
	fmt.Fprintf(b, "package %s\n\n", pkgName)
}

func packageName(pkg streamgen.Package) (string, error) {
	switch {
	case pkg.Name != "":
		return pkg.Name, nil
	case pkg.Path != "":
		return streamgen.DefaultPackageName(pkg.Path), nil
	default:
		return "", errors.WithHint(errors.New("output package has no name"),
			"set generate.package in streamgen.toml")
	}
}
