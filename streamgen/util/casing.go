// Package util holds the small string helpers shared by the generator and
// the catalog sources.
package util

import (
	"fmt"
	"strings"
	"unicode"
)

// ToPascalCase converts snake_case, kebab-case or camelCase to PascalCase
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			// Capitalize first letter, keep rest as-is
			runes := []rune(part)
			result.WriteRune(unicode.ToUpper(runes[0]))
			result.WriteString(string(runes[1:]))
		}
	}

	return result.String()
}

// ToCamelCase converts snake_case, kebab-case or PascalCase to camelCase.
// A leading acronym is lowercased as a whole: "URLPath" -> "urlPath".
func ToCamelCase(s string) string {
	runes := []rune(ToPascalCase(s))
	for i := range runes {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		// Keep the last capital of an acronym when a lowercase letter follows
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// FieldNames derives exported, unique struct field names from parameter
// names, in order. Names that yield nothing exported fall back to ArgN.
func FieldNames(params []string) []string {
	names := make([]string, len(params))
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		name := ToPascalCase(p)
		if name == "" || !unicode.IsUpper([]rune(name)[0]) {
			name = fmt.Sprintf("Arg%d", i)
		}
		if seen[name] {
			name = fmt.Sprintf("%s%d", name, i)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}
