package catalog

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/streamgen/streamgen"
)

func TestTypeRef_AliasRendersByName(t *testing.T) {
	geom := types.NewPackage("example.com/geom", "geom")
	point := types.NewNamed(types.NewTypeName(token.NoPos, geom, "Point", nil), types.NewStruct(nil, nil), nil)
	ui := types.NewPackage("example.com/ui", "ui")
	alias := types.NewAlias(types.NewTypeName(token.NoPos, ui, "Pt", nil), point)

	ref := newTypeRef(alias)
	assert.Equal(t, streamgen.Package{Path: "example.com/ui", Name: "ui"}, ref.Package())
	assert.Empty(t, ref.Args(), "the aliased type is not rendered")
	assert.Equal(t, "ui.Pt", ref.Expr(func(p streamgen.Package) string { return p.Name }))

	// the slice renders the alias too
	slice := newTypeRef(types.NewSlice(alias))
	assert.Equal(t, "[]ui.Pt", slice.Expr(func(p streamgen.Package) string { return p.Name }))
	assert.Equal(t, []streamgen.TypeRef{ref}, slice.Args())
}
