package catalog

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/streamgen"
)

// quotedPath matches the package qualifier of manifest type expressions:
// "example.com/ui".Point
var quotedPath = regexp.MustCompile(`"([^"]+)"\s*\.`)

const placeholderPrefix = "_sgpkg"

// typeResolver turns manifest type expressions into Types.
//
// Type expressions are Go type syntax with import paths written as quoted
// qualifiers, so that no import block is needed:
//
//	int
//	[]"example.com/ui".Point
//	map[string]"example.com/ui".List["example.com/geom".Point]
//	func(x int, rest ...string)
type typeResolver struct {
	// local is the package unqualified, non-predeclared names belong to
	local streamgen.Package

	// names overrides package names derived from import paths
	names map[string]string

	// callbacks maps "path.Name" to the declared callback signature source
	callbacks map[string]*callbackDecl
	building  map[string]bool
	built     map[string]*streamgen.Signature
}

func newTypeResolver(local streamgen.Package, names map[string]string) *typeResolver {
	return &typeResolver{
		local:     local,
		names:     names,
		callbacks: make(map[string]*callbackDecl),
		building:  make(map[string]bool),
		built:     make(map[string]*streamgen.Signature),
	}
}

// pkg returns the package for an import path, applying name overrides
func (r *typeResolver) pkg(path string) streamgen.Package {
	if name, ok := r.names[path]; ok {
		return streamgen.Package{Path: path, Name: name}
	}
	if path == r.local.Path && r.local.Name != "" {
		return r.local
	}
	return streamgen.Package{Path: path, Name: streamgen.DefaultPackageName(path)}
}

// key identifies a named type across the manifest
func key(pkg streamgen.Package, name string) string {
	return pkg.Path + "." + name
}

// parseTypeName parses an expression naming a single named type, as used
// for callback declarations.
func (r *typeResolver) parseTypeName(src string) (streamgen.Package, string, error) {
	expr, pkgs, err := parseExpr(src)
	if err != nil {
		return streamgen.Package{}, "", err
	}
	switch e := expr.(type) {
	case *ast.Ident:
		if r.local.IsZero() {
			return streamgen.Package{}, "", errors.Newf("type %s needs a package: write \"import/path\".%s", e.Name, e.Name)
		}
		return r.local, e.Name, nil
	case *ast.SelectorExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			if path, ok := pkgs[id.Name]; ok {
				return r.pkg(path), e.Sel.Name, nil
			}
		}
	}
	return streamgen.Package{}, "", errors.Newf("%q is not a named type", src)
}

// resolve parses a type expression
func (r *typeResolver) resolve(src string) (*Type, error) {
	expr, pkgs, err := parseExpr(src)
	if err != nil {
		return nil, err
	}
	t, err := r.convert(expr, pkgs)
	if err != nil {
		return nil, errors.Wrapf(err, "type %q", src)
	}
	return t, nil
}

func parseExpr(src string) (ast.Expr, map[string]string, error) {
	pkgs := make(map[string]string)
	n := 0
	rewritten := quotedPath.ReplaceAllStringFunc(src, func(m string) string {
		path := quotedPath.FindStringSubmatch(m)[1]
		id := fmt.Sprintf("%s%d", placeholderPrefix, n)
		n++
		pkgs[id] = path
		return id + "."
	})

	expr, err := parser.ParseExpr(rewritten)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid type expression %q", src)
	}
	return expr, pkgs, nil
}

func (r *typeResolver) convert(expr ast.Expr, pkgs map[string]string) (*Type, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return r.convert(e.X, pkgs)

	case *ast.Ident:
		if obj, ok := types.Universe.Lookup(e.Name).(*types.TypeName); ok {
			return Basic(obj.Name()), nil
		}
		if strings.HasPrefix(e.Name, placeholderPrefix) || r.local.IsZero() {
			return nil, errors.Newf("unqualified type %s", e.Name)
		}
		return r.named(r.local, e.Name, nil)

	case *ast.SelectorExpr:
		id, ok := e.X.(*ast.Ident)
		if !ok {
			return nil, errors.Newf("unexpected selector %T", e.X)
		}
		path, ok := pkgs[id.Name]
		if !ok {
			return nil, errors.WithHintf(errors.Newf("package %s is not an import path", id.Name),
				"write \"import/path\".%s instead of %s.%s", e.Sel.Name, id.Name, e.Sel.Name)
		}
		return r.named(r.pkg(path), e.Sel.Name, nil)

	case *ast.IndexExpr:
		return r.instance(e.X, []ast.Expr{e.Index}, pkgs)

	case *ast.IndexListExpr:
		return r.instance(e.X, e.Indices, pkgs)

	case *ast.StarExpr:
		elem, err := r.convert(e.X, pkgs)
		if err != nil {
			return nil, err
		}
		return Pointer(elem), nil

	case *ast.ArrayType:
		elem, err := r.convert(e.Elt, pkgs)
		if err != nil {
			return nil, err
		}
		if e.Len == nil {
			return Slice(elem), nil
		}
		lit, ok := e.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return nil, errors.New("array length must be an integer literal")
		}
		return Array(lit.Value, elem), nil

	case *ast.MapType:
		k, err := r.convert(e.Key, pkgs)
		if err != nil {
			return nil, err
		}
		v, err := r.convert(e.Value, pkgs)
		if err != nil {
			return nil, err
		}
		return Map(k, v), nil

	case *ast.ChanType:
		elem, err := r.convert(e.Value, pkgs)
		if err != nil {
			return nil, err
		}
		dir := "chan"
		switch e.Dir {
		case ast.RECV:
			dir = "<-chan"
		case ast.SEND:
			dir = "chan<-"
		}
		return Chan(dir, elem), nil

	case *ast.FuncType:
		sig, err := r.signature(e, pkgs)
		if err != nil {
			return nil, err
		}
		return Func(sig), nil

	case *ast.StructType:
		var names []string
		var fields []streamgen.TypeRef
		for _, f := range e.Fields.List {
			t, err := r.convert(f.Type, pkgs)
			if err != nil {
				return nil, err
			}
			if len(f.Names) == 0 {
				return nil, errors.New("embedded fields are not supported in struct types")
			}
			for _, n := range f.Names {
				names = append(names, n.Name)
				fields = append(fields, t)
			}
		}
		return Struct(names, fields), nil

	case *ast.InterfaceType:
		if e.Methods != nil && len(e.Methods.List) > 0 {
			return nil, errors.New("only the empty interface is supported")
		}
		return EmptyInterface(), nil

	default:
		return nil, errors.Newf("unsupported type expression %T", expr)
	}
}

func (r *typeResolver) instance(base ast.Expr, indices []ast.Expr, pkgs map[string]string) (*Type, error) {
	args := make([]streamgen.TypeRef, len(indices))
	for i, idx := range indices {
		t, err := r.convert(idx, pkgs)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	t, err := r.convert(base, pkgs)
	if err != nil {
		return nil, err
	}
	if t.kind != kindNamed {
		return nil, errors.New("type arguments on an unnamed type")
	}
	t.elems = args
	return t, nil
}

// named builds a named type, attaching the declared callback signature
// when the manifest declares one for it.
func (r *typeResolver) named(pkg streamgen.Package, name string, args []streamgen.TypeRef) (*Type, error) {
	t := Named(pkg, name, args...)
	k := key(pkg, name)
	decl, ok := r.callbacks[k]
	if !ok {
		return t, nil
	}
	if sig, ok := r.built[k]; ok {
		return t.WithSignature(sig), nil
	}
	if r.building[k] {
		// Self-referential callback; the inner reference stays opaque
		return t, nil
	}
	r.building[k] = true
	defer delete(r.building, k)

	sig, err := decl.signature(r)
	if err != nil {
		return nil, errors.Wrapf(err, "callback %s", k)
	}
	r.built[k] = sig
	return t.WithSignature(sig), nil
}

func (r *typeResolver) signature(ft *ast.FuncType, pkgs map[string]string) (*streamgen.Signature, error) {
	sig := &streamgen.Signature{}
	if ft.TypeParams != nil && len(ft.TypeParams.List) > 0 {
		return nil, errors.New("generic func types are not supported")
	}
	if ft.Params != nil {
		for i, f := range ft.Params.List {
			texpr := f.Type
			if ell, ok := texpr.(*ast.Ellipsis); ok {
				if i != len(ft.Params.List)-1 || len(f.Names) > 1 {
					return nil, errors.New("only the last parameter can be variadic")
				}
				sig.Variadic = true
				texpr = &ast.ArrayType{Elt: ell.Elt}
			}
			t, err := r.convert(texpr, pkgs)
			if err != nil {
				return nil, err
			}
			if len(f.Names) == 0 {
				sig.Params = append(sig.Params, streamgen.Param{Type: t})
			}
			for _, n := range f.Names {
				sig.Params = append(sig.Params, streamgen.Param{Name: n.Name, Type: t})
			}
		}
	}
	if ft.Results != nil {
		for _, f := range ft.Results.List {
			t, err := r.convert(f.Type, pkgs)
			if err != nil {
				return nil, err
			}
			count := len(f.Names)
			if count == 0 {
				count = 1
			}
			for range count {
				sig.Results = append(sig.Results, t)
			}
		}
	}
	return sig, nil
}
