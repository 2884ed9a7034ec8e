package golang

import (
	"go/token"
	"go/types"
	"strings"
	"unicode"
)

// reserved reports whether name cannot be used as a parameter name inside
// an adapter: keywords, predeclared identifiers and the adapter's locals.
func reserved(name string) bool {
	if token.IsKeyword(name) || types.Universe.Lookup(name) != nil {
		return true
	}
	switch name {
	case localCtx, localSelf, localHandler:
		return true
	}
	return false
}

// Escape turns name into a parameter identifier that shadows nothing the
// adapter refers to. Reserved names and names in taken get trailing
// underscores until they are free; characters not allowed in identifiers
// become underscores.
func (g *Generator) Escape(name string, taken map[string]bool) string {
	name = sanitize(name)
	for reserved(name) || taken[name] {
		name += "_"
	}
	return name
}

func sanitize(name string) string {
	if token.IsIdentifier(name) {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "_") == "" {
		return "arg"
	}
	return out
}
