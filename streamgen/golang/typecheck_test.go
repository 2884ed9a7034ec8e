package golang

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teranos/streamgen/catalog"
	"github.com/teranos/streamgen/streamgen"
)

const geomSource = `package geom

type Point struct{ X, Y int }
`

const otherSource = `package other

type Thing struct{}
`

const thirdSource = `package third

type Y int
`

const uiSource = `package ui

import (
	"example.com/geom"
	"example.com/other"
	"example.com/third"
)

type Action func()

type PressedHandler func(code int)

func NewPressedHandler(f func(int)) PressedHandler { return f }

type MovedHandler func(from, to geom.Point)

func NewMovedHandler(f func(geom.Point, geom.Point)) MovedHandler { return f }

type PrintedHandler func(lines ...string)

func NewPrintedHandler(f func(...string)) PrintedHandler { return f }

type TaggedHandler func(level int, tags ...string)

type TokenHandler func(string, int, bool, int)

type ITimer interface {
	AddTimeout(h Action)
	RemoveTimeout(h Action)
}

type IButton interface {
	AddPressed(h func(int))
	RemovePressed(h func(int))
	AddClicked(h PressedHandler)
	RemoveClicked(h PressedHandler)
}

type ICanvas interface {
	AddMoved(h MovedHandler)
	RemoveMoved(h MovedHandler)
}

type ILog interface {
	AddPrinted(h PrintedHandler)
	RemovePrinted(h PrintedHandler)
	AddTagged(h TaggedHandler)
	RemoveTagged(h TaggedHandler)
}

type IParser interface {
	AddToken(h TokenHandler)
	RemoveToken(h TokenHandler)
}

type CheckedHandler func(thing other.Thing) bool

type Inner func(y third.Y)

type HookedHandler func(inner Inner)

type IWidget interface {
	AddChecked(h CheckedHandler)
	RemoveChecked(h CheckedHandler)
	AddDone(h Action)
	RemoveDone(h Action)
	AddHooked(h HookedHandler)
	RemoveHooked(h HookedHandler)
}
`

// fixtureInterfaces mirrors uiSource as hand-built catalog types
func fixtureInterfaces() []streamgen.Interface {
	geom := streamgen.Package{Path: "example.com/geom", Name: "geom"}
	other := streamgen.Package{Path: "example.com/other", Name: "other"}
	third := streamgen.Package{Path: "example.com/third", Name: "third"}
	point := catalog.Named(geom, "Point")
	str := catalog.Basic("string")
	integer := catalog.Basic("int")
	lines := catalog.Slice(str)

	return []streamgen.Interface{
		{Package: uiPkg, Name: "ITimer", Events: []streamgen.Event{
			event("Timeout", named("Action", &streamgen.Signature{})),
		}},
		{Package: uiPkg, Name: "IButton", Events: []streamgen.Event{
			event("Pressed", catalog.Func(&streamgen.Signature{Params: []streamgen.Param{param("code", integer)}})),
			event("Clicked", named("PressedHandler", &streamgen.Signature{
				Params:      []streamgen.Param{param("code", integer)},
				Constructor: "NewPressedHandler",
			})),
		}},
		{Package: uiPkg, Name: "ICanvas", Events: []streamgen.Event{
			event("Moved", named("MovedHandler", &streamgen.Signature{
				Params:      []streamgen.Param{param("from", point), param("to", point)},
				Constructor: "NewMovedHandler",
			})),
		}},
		{Package: uiPkg, Name: "ILog", Events: []streamgen.Event{
			event("Printed", named("PrintedHandler", &streamgen.Signature{
				Params:      []streamgen.Param{param("lines", lines)},
				Variadic:    true,
				Constructor: "NewPrintedHandler",
			})),
			event("Tagged", named("TaggedHandler", &streamgen.Signature{
				Params:   []streamgen.Param{param("level", integer), param("tags", lines)},
				Variadic: true,
			})),
		}},
		{Package: uiPkg, Name: "IParser", Events: []streamgen.Event{
			event("Token", named("TokenHandler", &streamgen.Signature{
				Params: []streamgen.Param{
					param("type", str),
					param("h", integer),
					param("ui", catalog.Basic("bool")),
					param("len", integer),
				},
			})),
		}},
		// Checked is skipped and Inner renders by name, so neither other
		// nor third may end up imported
		{Package: uiPkg, Name: "IWidget", Events: []streamgen.Event{
			event("Checked", named("CheckedHandler", &streamgen.Signature{
				Params:  []streamgen.Param{param("thing", catalog.Named(other, "Thing"))},
				Results: []streamgen.TypeRef{catalog.Basic("bool")},
			})),
			event("Done", named("Action", &streamgen.Signature{})),
			event("Hooked", named("HookedHandler", &streamgen.Signature{
				Params: []streamgen.Param{param("inner", named("Inner", &streamgen.Signature{
					Params: []streamgen.Param{param("y", catalog.Named(third, "Y"))},
				}))},
			})),
		}},
	}
}

// sourceImporter type-checks fixture packages and the stream runtime from
// source; everything else comes from the standard library.
type sourceImporter struct {
	fset     *token.FileSet
	files    map[string][]*ast.File
	pkgs     map[string]*types.Package
	fallback types.Importer
}

func newSourceImporter(t *testing.T, fset *token.FileSet) *sourceImporter {
	t.Helper()
	imp := &sourceImporter{
		fset:     fset,
		files:    make(map[string][]*ast.File),
		pkgs:     make(map[string]*types.Package),
		fallback: importer.ForCompiler(fset, "source", nil),
	}

	dir := filepath.Join("..", "..", "stream")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".go") && !strings.HasSuffix(e.Name(), "_test.go") {
			f, err := parser.ParseFile(fset, filepath.Join(dir, e.Name()), nil, 0)
			require.NoError(t, err)
			imp.files[DefaultStreamPackage.Path] = append(imp.files[DefaultStreamPackage.Path], f)
		}
	}
	imp.add(t, "example.com/geom", "geom.go", geomSource)
	imp.add(t, "example.com/other", "other.go", otherSource)
	imp.add(t, "example.com/third", "third.go", thirdSource)
	return imp
}

func (i *sourceImporter) add(t *testing.T, path, filename, src string) {
	t.Helper()
	f, err := parser.ParseFile(i.fset, filename, src, 0)
	require.NoError(t, err, src)
	i.files[path] = append(i.files[path], f)
}

func (i *sourceImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := i.pkgs[path]; ok {
		return pkg, nil
	}
	files, ok := i.files[path]
	if !ok {
		return i.fallback.Import(path)
	}
	conf := types.Config{Importer: i}
	pkg, err := conf.Check(path, i.fset, files, nil)
	if err != nil {
		return nil, err
	}
	i.pkgs[path] = pkg
	return pkg, nil
}

func TestGeneratedUnitsTypeCheck(t *testing.T) {
	fset := token.NewFileSet()
	imp := newSourceImporter(t, fset)
	imp.add(t, uiPkg.Path, "ui.go", uiSource)

	driver := streamgen.NewDriver(NewGenerator(), streamgen.NewMemoryEmitter(), nil, streamgen.Options{Local: outPkg})
	for _, owner := range fixtureInterfaces() {
		unit, err := driver.Generate(owner)
		require.NoError(t, err)
		imp.add(t, outPkg.Path, unit.Filename, string(unit.Source))
	}

	_, err := imp.Import(outPkg.Path)
	require.NoError(t, err)
}

func TestGeneratedUnitsTypeCheck_LocalPackage(t *testing.T) {
	fset := token.NewFileSet()
	imp := newSourceImporter(t, fset)
	imp.add(t, uiPkg.Path, "ui.go", uiSource)

	driver := streamgen.NewDriver(NewGenerator(), streamgen.NewMemoryEmitter(), nil, streamgen.Options{Local: uiPkg})
	for _, owner := range fixtureInterfaces() {
		unit, err := driver.Generate(owner)
		require.NoError(t, err)
		imp.add(t, uiPkg.Path, unit.Filename, string(unit.Source))
	}

	_, err := imp.Import(uiPkg.Path)
	require.NoError(t, err)
}
