package streamgen

import (
	"unicode"
	"unicode/utf8"
)

// ShortName strips the conventional interface marker from a name: a single
// leading 'I' is removed iff the name is longer than one character and the
// next character is upper-case. Any other name is returned unchanged.
//
//	ShortName("INode")      // "Node"
//	ShortName("IInterface") // "Interface"
//	ShortName("I")          // "I"
//	ShortName("Input")      // "Input"
func ShortName(name string) string {
	if len(name) < 2 || name[0] != 'I' {
		return name
	}
	next, _ := utf8.DecodeRuneInString(name[1:])
	if !unicode.IsUpper(next) {
		return name
	}
	return name[1:]
}

// TypeName returns the declared name of the unit generated for an interface.
func TypeName(shortName string) string {
	return shortName + "StreamExtensions"
}

// Filename returns the deterministic file name of the unit generated for an
// interface, e.g. "NodeExtensions.g.go".
func Filename(shortName, ext string) string {
	return shortName + "Extensions.g." + ext
}

// ArgsTypeName returns the record type declared for an event whose callback
// takes several parameters, e.g. "CanvasMovedArgs".
func ArgsTypeName(shortName, event string) string {
	return shortName + event + "Args"
}

// MethodName returns the adapter name for an event, e.g. "OnPressedAsStream".
func MethodName(event string) string {
	return "On" + event + "AsStream"
}
