package catalog

import (
	"go/types"

	"github.com/teranos/streamgen/streamgen"
)

// typeRef is a streamgen.TypeRef backed by go/types.
type typeRef struct {
	t types.Type
}

func newTypeRef(t types.Type) streamgen.TypeRef {
	return typeRef{t: t}
}

func (r typeRef) Package() streamgen.Package {
	switch t := r.t.(type) {
	case *types.Named:
		return packageOf(t.Obj().Pkg())
	case *types.Alias:
		return packageOf(t.Obj().Pkg())
	}
	return streamgen.Package{}
}

func (r typeRef) Expr(q streamgen.Qualifier) string {
	return types.TypeString(r.t, func(pkg *types.Package) string {
		return q(packageOf(pkg))
	})
}

func (r typeRef) Args() []streamgen.TypeRef {
	var nested []types.Type
	switch t := r.t.(type) {
	case *types.Named:
		for i := 0; i < t.TypeArgs().Len(); i++ {
			nested = append(nested, t.TypeArgs().At(i))
		}
	case *types.Alias:
		for i := 0; i < t.TypeArgs().Len(); i++ {
			nested = append(nested, t.TypeArgs().At(i))
		}
	case *types.Slice:
		nested = append(nested, t.Elem())
	case *types.Array:
		nested = append(nested, t.Elem())
	case *types.Pointer:
		nested = append(nested, t.Elem())
	case *types.Chan:
		nested = append(nested, t.Elem())
	case *types.Map:
		nested = append(nested, t.Key(), t.Elem())
	case *types.Signature:
		for i := 0; i < t.Params().Len(); i++ {
			nested = append(nested, t.Params().At(i).Type())
		}
		for i := 0; i < t.Results().Len(); i++ {
			nested = append(nested, t.Results().At(i).Type())
		}
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			nested = append(nested, t.Field(i).Type())
		}
	}

	out := make([]streamgen.TypeRef, len(nested))
	for i, n := range nested {
		out[i] = newTypeRef(n)
	}
	return out
}

func (r typeRef) Signature() (*streamgen.Signature, bool) {
	sig, ok := r.t.Underlying().(*types.Signature)
	if !ok || sig.TypeParams().Len() > 0 {
		return nil, false
	}

	out := &streamgen.Signature{Variadic: sig.Variadic()}
	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		out.Params = append(out.Params, streamgen.Param{Name: p.Name(), Type: newTypeRef(p.Type())})
	}
	for i := 0; i < sig.Results().Len(); i++ {
		out.Results = append(out.Results, newTypeRef(sig.Results().At(i).Type()))
	}
	out.Constructor = constructorFor(r.t, sig)
	return out, true
}

// constructorFor finds New<Type> in the callback's package: an exported,
// non-generic function taking one func with the callback's signature and
// returning the callback type.
func constructorFor(t types.Type, sig *types.Signature) string {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil || named.TypeArgs().Len() > 0 {
		return ""
	}
	name := "New" + named.Obj().Name()
	fn, ok := named.Obj().Pkg().Scope().Lookup(name).(*types.Func)
	if !ok || !fn.Exported() {
		return ""
	}
	ctor, ok := fn.Type().(*types.Signature)
	if !ok || ctor.TypeParams().Len() > 0 || ctor.Variadic() {
		return ""
	}
	if ctor.Params().Len() != 1 || ctor.Results().Len() != 1 {
		return ""
	}
	param, ok := ctor.Params().At(0).Type().Underlying().(*types.Signature)
	if !ok || !types.Identical(param, sig) {
		return ""
	}
	if !types.Identical(ctor.Results().At(0).Type(), named) {
		return ""
	}
	return name
}
