package streamgen_test

import (
	"github.com/teranos/streamgen/catalog"
	"github.com/teranos/streamgen/streamgen"
)

var (
	uiPkg   = streamgen.Package{Path: "example.com/ui", Name: "ui"}
	geomPkg = streamgen.Package{Path: "example.com/geom", Name: "geom"}
	outPkg  = streamgen.Package{Path: "example.com/app/streams", Name: "streams"}
)

func param(name string, t streamgen.TypeRef) streamgen.Param {
	return streamgen.Param{Name: name, Type: t}
}

// callback returns a named callback type in package ui
func callback(name string, params ...streamgen.Param) *catalog.Type {
	return catalog.Named(uiPkg, name).WithSignature(&streamgen.Signature{Params: params})
}

func event(name string, cb streamgen.TypeRef) streamgen.Event {
	return streamgen.Event{Name: name, Callback: cb, Subscribe: "Add" + name, Unsubscribe: "Remove" + name}
}

func byPkgName(pkg streamgen.Package) string { return pkg.Name }
