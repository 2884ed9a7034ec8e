// Package catalog loads the interfaces streamgen adapts.
//
// Two sources are available:
//   - PackagesSource type-checks Go packages with golang.org/x/tools/go/packages
//     and pairs Add<Event>/Remove<Event> methods of exported interfaces.
//   - ManifestSource reads TOML or YAML manifests describing interfaces by hand.
//
// Both produce streamgen.TypeRef values; the generator never sees go/types.
package catalog

import (
	"context"
	"fmt"
	"go/types"
	"path"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/streamgen"
)

// minGoVersion is the first Go release with type parameters, which every
// generated adapter uses.
const minGoVersion = ">= 1.18"

// PackagesSource loads interfaces from Go packages.
type PackagesSource struct {
	// Dir is the directory go/packages runs in; empty means the working directory
	Dir string

	// Patterns are package patterns, e.g. "./ui/..."
	Patterns []string

	Filter

	// SubscribePrefix and UnsubscribePrefix pair accessor methods;
	// they default to "Add" and "Remove"
	SubscribePrefix   string
	UnsubscribePrefix string
}

// NewPackagesSource creates a source for patterns loaded from dir.
func NewPackagesSource(dir string, patterns ...string) *PackagesSource {
	return &PackagesSource{Dir: dir, Patterns: patterns}
}

// Name returns "packages"
func (s *PackagesSource) Name() string {
	return "packages"
}

// Load type-checks the packages and collects their event-exposing interfaces,
// ordered by package path and then interface name.
func (s *PackagesSource) Load(ctx context.Context) (*streamgen.Catalog, error) {
	if len(s.Patterns) == 0 {
		return nil, errors.WithHint(errors.New("no package patterns"),
			"set generate.patterns in streamgen.toml, e.g. [\"./...\"]")
	}
	cfg := &packages.Config{
		Context: ctx,
		Dir:     s.Dir,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedModule,
	}
	pkgs, err := packages.Load(cfg, s.Patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load packages %s", strings.Join(s.Patterns, " "))
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages matched %s", strings.Join(s.Patterns, " "))
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	catalog := &streamgen.Catalog{}
	checked := make(map[string]bool)
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			return nil, errors.Newf("package %s: %v", pkg.PkgPath, pkg.Errors)
		}
		for _, e := range pkg.Errors {
			catalog.Warnings = append(catalog.Warnings, fmt.Sprintf("package %s: %s", pkg.PkgPath, e.Msg))
		}
		if pkg.Module != nil && !checked[pkg.Module.Path] {
			checked[pkg.Module.Path] = true
			if w := checkGoVersion(pkg.Module); w != "" {
				catalog.Warnings = append(catalog.Warnings, w)
			}
		}
		catalog.Interfaces = append(catalog.Interfaces, s.interfaces(pkg.Types)...)
	}
	return catalog, nil
}

// checkGoVersion warns when the module's go directive predates type parameters
func checkGoVersion(mod *packages.Module) string {
	if mod.GoVersion == "" {
		return ""
	}
	v, err := semver.NewVersion(mod.GoVersion)
	if err != nil {
		return fmt.Sprintf("module %s: unrecognized go version %q", mod.Path, mod.GoVersion)
	}
	constraint, err := semver.NewConstraint(minGoVersion)
	if err != nil {
		return ""
	}
	if !constraint.Check(v) {
		return fmt.Sprintf("module %s declares go %s; generated adapters need go 1.18 or later", mod.Path, mod.GoVersion)
	}
	return ""
}

// interfaces collects the exported, non-generic interfaces of pkg
func (s *PackagesSource) interfaces(pkg *types.Package) []streamgen.Interface {
	var out []streamgen.Interface
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() || !s.Selected(name) {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		iface, ok := named.Underlying().(*types.Interface)
		if !ok {
			continue
		}
		out = append(out, streamgen.Interface{
			Package: packageOf(pkg),
			Name:    name,
			Events:  s.events(iface),
		})
	}
	return out
}

// Filter selects interfaces by name.
type Filter struct {
	// Include selects interfaces by name (path.Match syntax); empty means all
	Include []string

	// Exclude drops interfaces by name (path.Match syntax)
	Exclude []string
}

// Selected reports whether the interface called name passes the filter.
// Exclusion wins over inclusion.
func (f Filter) Selected(name string) bool {
	for _, pattern := range f.Exclude {
		if ok, _ := path.Match(pattern, name); ok {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// events pairs the accessor methods declared directly on iface. Embedded
// interfaces are catalog entries of their own. An Add method without its
// Remove counterpart still yields an event, which the generator skips.
func (s *PackagesSource) events(iface *types.Interface) []streamgen.Event {
	add, remove := s.SubscribePrefix, s.UnsubscribePrefix
	if add == "" {
		add = "Add"
	}
	if remove == "" {
		remove = "Remove"
	}

	methods := make(map[string]*types.Func, iface.NumExplicitMethods())
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		m := iface.ExplicitMethod(i)
		methods[m.Name()] = m
	}

	var events []streamgen.Event
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		m := iface.ExplicitMethod(i)
		name, ok := strings.CutPrefix(m.Name(), add)
		if !ok || name == "" {
			continue
		}
		handler, ok := accessorParam(m)
		if !ok {
			continue
		}
		ev := streamgen.Event{
			Name:      name,
			Callback:  newTypeRef(handler),
			Subscribe: m.Name(),
		}
		if rm, ok := methods[remove+name]; ok {
			if other, ok := accessorParam(rm); ok && types.Identical(handler, other) {
				ev.Unsubscribe = rm.Name()
			}
		}
		events = append(events, ev)
	}
	return events
}

// accessorParam returns the handler type of func(h H) with no results
func accessorParam(m *types.Func) (types.Type, bool) {
	sig, ok := m.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 0 || sig.Variadic() {
		return nil, false
	}
	return sig.Params().At(0).Type(), true
}

func packageOf(pkg *types.Package) streamgen.Package {
	if pkg == nil {
		return streamgen.Package{}
	}
	return streamgen.Package{Path: pkg.Path(), Name: pkg.Name()}
}
