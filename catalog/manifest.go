package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/streamgen"
)

// Manifest is a hand-written description of interfaces and their events,
// for surfaces that cannot be loaded as Go packages.
//
//	package = "example.com/ui"
//
//	[[callbacks]]
//	type = "PressedHandler"
//	params = [{ name = "code", type = "int" }]
//	constructor = "NewPressedHandler"
//
//	[[interfaces]]
//	name = "IButton"
//	events = [{ name = "Pressed", callback = "PressedHandler" }]
type Manifest struct {
	// Package is the default package of interfaces, callbacks and
	// unqualified type names
	Package string `toml:"package" yaml:"package"`

	// PackageNames overrides the name derived from an import path
	PackageNames map[string]string `toml:"package_names" yaml:"package_names"`

	Callbacks  []CallbackDecl  `toml:"callbacks" yaml:"callbacks"`
	Interfaces []InterfaceDecl `toml:"interfaces" yaml:"interfaces"`
}

// CallbackDecl declares a named callback type.
type CallbackDecl struct {
	// Type names the callback, e.g. "PressedHandler" or "\"example.com/ui\".PressedHandler"
	Type string `toml:"type" yaml:"type"`

	Params   []ParamDecl `toml:"params" yaml:"params"`
	Variadic bool        `toml:"variadic" yaml:"variadic"`
	Results  []string    `toml:"results" yaml:"results"`

	// Constructor names the adapter constructor in the callback's package
	Constructor string `toml:"constructor" yaml:"constructor"`
}

// ParamDecl declares one callback parameter.
type ParamDecl struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`
}

// InterfaceDecl declares an interface and its events.
type InterfaceDecl struct {
	// Package overrides Manifest.Package
	Package string      `toml:"package" yaml:"package"`
	Name    string      `toml:"name" yaml:"name"`
	Events  []EventDecl `toml:"events" yaml:"events"`
}

// EventDecl declares one event. Subscribe and Unsubscribe default to
// Add<Name> and Remove<Name>.
type EventDecl struct {
	Name        string `toml:"name" yaml:"name"`
	Callback    string `toml:"callback" yaml:"callback"`
	Subscribe   string `toml:"subscribe" yaml:"subscribe"`
	Unsubscribe string `toml:"unsubscribe" yaml:"unsubscribe"`
}

// callbackDecl is a declared callback waiting to be resolved
type callbackDecl struct {
	decl CallbackDecl
	pkg  streamgen.Package
}

// signature resolves the declaration; unqualified names in it belong to
// the callback's own package.
func (c *callbackDecl) signature(r *typeResolver) (*streamgen.Signature, error) {
	scoped := *r
	scoped.local = c.pkg
	r = &scoped

	sig := &streamgen.Signature{Variadic: c.decl.Variadic, Constructor: c.decl.Constructor}
	for i, p := range c.decl.Params {
		t, err := r.resolve(p.Type)
		if err != nil {
			return nil, err
		}
		var ref streamgen.TypeRef = t
		if c.decl.Variadic && i == len(c.decl.Params)-1 {
			ref = Slice(t)
		}
		sig.Params = append(sig.Params, streamgen.Param{Name: p.Name, Type: ref})
	}
	for _, res := range c.decl.Results {
		t, err := r.resolve(res)
		if err != nil {
			return nil, err
		}
		sig.Results = append(sig.Results, t)
	}
	return sig, nil
}

// DecodeManifest decodes a TOML or YAML manifest; format is "toml" or
// "yaml". Keys TOML decoding did not use are returned as warnings.
func DecodeManifest(data []byte, format string) (*Manifest, []string, error) {
	var m Manifest
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to decode TOML manifest")
		}
		var warnings []string
		for _, k := range md.Undecoded() {
			warnings = append(warnings, "unknown manifest key "+k.String())
		}
		return &m, warnings, nil
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, nil, errors.Wrap(err, "failed to decode YAML manifest")
		}
		return &m, nil, nil
	default:
		return nil, nil, errors.Newf("unknown manifest format %q", format)
	}
}

// Resolve resolves the manifest into catalog entries, in declaration order.
func (m *Manifest) Resolve() ([]streamgen.Interface, error) {
	root := newTypeResolver(streamgen.Package{}, m.PackageNames)
	if m.Package != "" {
		root.local = root.pkg(m.Package)
	}

	callbacks := root.callbacks
	for _, cb := range m.Callbacks {
		pkg, name, err := root.parseTypeName(cb.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "callback %q", cb.Type)
		}
		k := key(pkg, name)
		if _, dup := callbacks[k]; dup {
			return nil, errors.Newf("callback %s declared twice", k)
		}
		callbacks[k] = &callbackDecl{decl: cb, pkg: pkg}
	}

	var out []streamgen.Interface
	for _, decl := range m.Interfaces {
		r := root
		if decl.Package != "" {
			scoped := *root
			scoped.local = root.pkg(decl.Package)
			r = &scoped
		}
		if r.local.IsZero() {
			return nil, errors.WithHint(errors.Newf("interface %s has no package", decl.Name),
				"set package at the top of the manifest or on the interface")
		}

		iface := streamgen.Interface{Package: r.local, Name: decl.Name}
		for _, ev := range decl.Events {
			e := streamgen.Event{
				Name:        ev.Name,
				Subscribe:   ev.Subscribe,
				Unsubscribe: ev.Unsubscribe,
			}
			if e.Subscribe == "" && ev.Name != "" {
				e.Subscribe = "Add" + ev.Name
			}
			if e.Unsubscribe == "" && ev.Name != "" {
				e.Unsubscribe = "Remove" + ev.Name
			}
			if strings.TrimSpace(ev.Callback) != "" {
				cb, err := r.resolve(ev.Callback)
				if err != nil {
					return nil, errors.Wrapf(err, "%s.%s", decl.Name, ev.Name)
				}
				e.Callback = cb
			}
			iface.Events = append(iface.Events, e)
		}
		out = append(out, iface)
	}
	return out, nil
}

// ManifestSource loads the catalog from manifest files.
type ManifestSource struct {
	Paths []string
	Filter
}

// NewManifestSource creates a source over the given files. The format
// follows the extension: .toml, .yaml or .yml.
func NewManifestSource(paths ...string) *ManifestSource {
	return &ManifestSource{Paths: paths}
}

// Name returns "manifest"
func (s *ManifestSource) Name() string {
	return "manifest"
}

// Load reads and resolves every manifest, in the order given
func (s *ManifestSource) Load(ctx context.Context) (*streamgen.Catalog, error) {
	catalog := &streamgen.Catalog{}
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		format, err := manifestFormat(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read manifest %s", path)
		}
		m, warnings, err := DecodeManifest(data, format)
		if err != nil {
			return nil, errors.Wrapf(err, "manifest %s", path)
		}
		for _, w := range warnings {
			catalog.Warnings = append(catalog.Warnings, path+": "+w)
		}
		ifaces, err := m.Resolve()
		if err != nil {
			return nil, errors.Wrapf(err, "manifest %s", path)
		}
		for _, iface := range ifaces {
			if s.Selected(iface.Name) {
				catalog.Interfaces = append(catalog.Interfaces, iface)
			}
		}
	}
	return catalog, nil
}

func manifestFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", errors.WithHint(errors.Newf("unsupported manifest %s", path),
			"manifests are .toml, .yaml or .yml files")
	}
}

// Names returns the qualified names of interfaces, sorted; used by the
// CLI to list a catalog.
func Names(ifaces []streamgen.Interface) []string {
	names := make([]string, len(ifaces))
	for i, iface := range ifaces {
		names[i] = iface.QualifiedName()
	}
	sort.Strings(names)
	return names
}
