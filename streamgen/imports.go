package streamgen

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// maxTypeDepth bounds the walk over nested type arguments; recursive callback
// types (type H func(H)) would otherwise never terminate.
const maxTypeDepth = 32

// Import is one entry of a generated unit's import block.
type Import struct {
	Path string
	Name string

	// Aliased is set when Name differs from the package's own name and must
	// be written explicitly in the import spec.
	Aliased bool
}

// ImportSet is the import block of one generated unit.
//
// Packages are collected first and named on first use: paths are sorted and
// each package keeps its own name unless that name is already taken, in which
// case it gets the first free numbered alias (ui, ui2, ui3...). Packages
// discovered after naming keep working and get the next free name.
type ImportSet struct {
	local    Package
	reserved map[string]bool

	pkgs     map[string]Package
	names    map[string]string
	used     map[string]bool
	resolved bool
}

// NewImportSet creates an empty set for a unit declared in local. Types of
// the local package render unqualified and it is never imported. Reserved
// names are never handed out as package names.
func NewImportSet(local Package, reserved ...string) *ImportSet {
	r := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		r[name] = true
	}
	return &ImportSet{
		local:    local,
		reserved: r,
		pkgs:     make(map[string]Package),
		names:    make(map[string]string),
		used:     make(map[string]bool),
	}
}

// CollectImports computes the import set a unit for owner needs: the baseline
// packages, the interface's own package, and every package reachable from the
// callback types of its adaptable events, including parameter types and type
// arguments at any depth.
func CollectImports(baseline []Package, local Package, owner Interface, reserved ...string) *ImportSet {
	set := NewImportSet(local, reserved...)
	for _, pkg := range baseline {
		set.Add(pkg)
	}
	set.Add(owner.Package)
	for _, ev := range owner.ValidEvents() {
		if _, err := Classify(ev.Callback, nil); err != nil {
			continue
		}
		set.AddType(ev.Callback)
	}
	return set
}

// Add records pkg. The zero package and the local package are ignored.
func (s *ImportSet) Add(pkg Package) {
	if pkg.IsZero() || pkg.Path == s.local.Path {
		return
	}
	if _, ok := s.pkgs[pkg.Path]; ok {
		return
	}
	if pkg.Name == "" {
		pkg.Name = DefaultPackageName(pkg.Path)
	}
	s.pkgs[pkg.Path] = pkg
	if s.resolved {
		s.assign(pkg)
	}
}

// AddType records the packages of t and of every type nested in it. The
// signature of a named type nested in t is not visited: it renders by name.
func (s *ImportSet) AddType(t TypeRef) {
	s.walk(t, 0)
}

func (s *ImportSet) walk(t TypeRef, depth int) {
	if t == nil || depth > maxTypeDepth {
		return
	}
	s.Add(t.Package())
	for _, arg := range t.Args() {
		s.walk(arg, depth+1)
	}
	if depth > 0 && !t.Package().IsZero() {
		return
	}
	if sig, ok := t.Signature(); ok && sig != nil {
		for _, p := range sig.Params {
			s.walk(p.Type, depth+1)
		}
		for _, r := range sig.Results {
			s.walk(r, depth+1)
		}
	}
}

// Len returns the number of imported packages.
func (s *ImportSet) Len() int {
	return len(s.pkgs)
}

// Has reports whether path is imported.
func (s *ImportSet) Has(path string) bool {
	_, ok := s.pkgs[path]
	return ok
}

// Qualifier returns the qualifier generated source must use. Packages not yet
// in the set are added on the fly, so rendering never produces a reference
// without a matching import.
func (s *ImportSet) Qualifier() Qualifier {
	return func(pkg Package) string {
		if pkg.IsZero() || pkg.Path == s.local.Path {
			return ""
		}
		s.resolve()
		s.Add(pkg)
		s.used[pkg.Path] = true
		return s.names[pkg.Path]
	}
}

// Names returns every local name taken by an import, for identifier escaping.
func (s *ImportSet) Names() map[string]bool {
	s.resolve()
	taken := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		taken[name] = true
	}
	return taken
}

// Imports returns the import block sorted by path.
func (s *ImportSet) Imports() []Import {
	s.resolve()
	out := make([]Import, 0, len(s.pkgs))
	for path, pkg := range s.pkgs {
		name := s.names[path]
		out = append(out, Import{Path: path, Name: name, Aliased: name != pkg.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Used returns the imports the Qualifier was asked for, sorted by path.
// Collected packages that rendering never referenced are left out.
func (s *ImportSet) Used() []Import {
	var out []Import
	for _, imp := range s.Imports() {
		if s.used[imp.Path] {
			out = append(out, imp)
		}
	}
	return out
}

func (s *ImportSet) resolve() {
	if s.resolved {
		return
	}
	s.resolved = true
	paths := make([]string, 0, len(s.pkgs))
	for path := range s.pkgs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		s.assign(s.pkgs[path])
	}
}

func (s *ImportSet) assign(pkg Package) {
	taken := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		taken[name] = true
	}
	name := pkg.Name
	for n := 2; taken[name] || s.reserved[name]; n++ {
		name = fmt.Sprintf("%s%d", pkg.Name, n)
	}
	s.names[pkg.Path] = name
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// DefaultPackageName guesses a package name from its import path, the way
// goimports does when the package itself cannot be loaded: the last path
// element, skipping a /vN major version suffix, without a gopkg.in style
// .vN suffix or a go- prefix, reduced to identifier characters.
func DefaultPackageName(path string) string {
	elems := strings.Split(strings.Trim(path, "/"), "/")
	last := elems[len(elems)-1]
	if majorVersion.MatchString(last) && len(elems) > 1 {
		last = elems[len(elems)-2]
	}
	if i := strings.Index(last, ".v"); i > 0 && majorVersion.MatchString(last[i+1:]) {
		last = last[:i]
	}
	last = strings.TrimPrefix(last, "go-")
	last = strings.TrimSuffix(last, "-go")

	var b strings.Builder
	for _, r := range last {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	name := b.String()
	if name == "" {
		return "pkg"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
