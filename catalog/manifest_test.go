package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/streamgen/streamgen"
)

const uiManifest = `
package = "example.com/ui"

[package_names]
"example.com/geom/v2" = "geometry"

[[callbacks]]
type = "PressedHandler"
params = [{ name = "code", type = "int" }]
constructor = "NewPressedHandler"

[[callbacks]]
type = '"example.com/ui".MovedHandler'
params = [
  { name = "from", type = '"example.com/geom/v2".Point' },
  { name = "to", type = '"example.com/geom/v2".Point' },
]

[[callbacks]]
type = "LinesHandler"
params = [{ name = "prefix", type = "string" }, { name = "lines", type = "string" }]
variadic = true

[[interfaces]]
name = "IButton"
events = [
  { name = "Pressed", callback = "PressedHandler" },
  { name = "Moved", callback = "MovedHandler" },
  { name = "Printed", callback = "LinesHandler", subscribe = "OnPrinted", unsubscribe = "OffPrinted" },
  { name = "Timeout", callback = "func()" },
]
`

func TestDecodeManifest_TOML(t *testing.T) {
	m, warnings, err := DecodeManifest([]byte(uiManifest), "toml")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	ifaces, err := m.Resolve()
	require.NoError(t, err)
	require.Len(t, ifaces, 1)

	button := ifaces[0]
	assert.Equal(t, "ui.IButton", button.QualifiedName())
	require.Len(t, button.Events, 4)

	pressed := button.Events[0]
	assert.Equal(t, "AddPressed", pressed.Subscribe)
	assert.Equal(t, "RemovePressed", pressed.Unsubscribe)
	assert.Equal(t, "ui.PressedHandler", pressed.Callback.Expr(pkgName))
	sig, ok := pressed.Callback.Signature()
	require.True(t, ok)
	assert.Equal(t, "NewPressedHandler", sig.Constructor)
	assert.Equal(t, "code", sig.Params[0].Name)

	moved := button.Events[1]
	sig, ok = moved.Callback.Signature()
	require.True(t, ok)
	require.Len(t, sig.Params, 2)
	assert.Equal(t, "geometry.Point", sig.Params[0].Type.Expr(pkgName))
	assert.Equal(t, streamgen.Package{Path: "example.com/geom/v2", Name: "geometry"}, sig.Params[0].Type.Package())

	printed := button.Events[2]
	assert.Equal(t, "OnPrinted", printed.Subscribe)
	assert.Equal(t, "OffPrinted", printed.Unsubscribe)
	sig, ok = printed.Callback.Signature()
	require.True(t, ok)
	assert.True(t, sig.Variadic)
	assert.Equal(t, "[]string", sig.Params[1].Type.Expr(pkgName))

	timeout := button.Events[3]
	assert.Equal(t, "func()", timeout.Callback.Expr(pkgName))
	assert.True(t, timeout.Valid())
}

func TestDecodeManifest_UnknownKeysWarn(t *testing.T) {
	_, warnings, err := DecodeManifest([]byte("package = \"example.com/ui\"\ncolour = \"red\"\n"), "toml")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "colour")
}

func TestDecodeManifest_YAML(t *testing.T) {
	src := `
package: example.com/ui
interfaces:
  - name: ITimer
    events:
      - name: Timeout
        callback: func()
`
	m, _, err := DecodeManifest([]byte(src), "yaml")
	require.NoError(t, err)
	ifaces, err := m.Resolve()
	require.NoError(t, err)
	require.Len(t, ifaces, 1)
	assert.Equal(t, "AddTimeout", ifaces[0].Events[0].Subscribe)

	_, _, err = DecodeManifest([]byte("package: x\ncolour: red\n"), "yaml")
	assert.Error(t, err, "YAML manifests reject unknown keys")
}

func TestManifest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		contains string
	}{
		{
			name:     "interface without package",
			manifest: Manifest{Interfaces: []InterfaceDecl{{Name: "IButton"}}},
			contains: "has no package",
		},
		{
			name: "bare package qualifier",
			manifest: Manifest{
				Package: "example.com/ui",
				Interfaces: []InterfaceDecl{{
					Name:   "IButton",
					Events: []EventDecl{{Name: "Pressed", Callback: "func(p geom.Point)"}},
				}},
			},
			contains: "not an import path",
		},
		{
			name: "duplicate callback",
			manifest: Manifest{
				Package:   "example.com/ui",
				Callbacks: []CallbackDecl{{Type: "H"}, {Type: `"example.com/ui".H`}},
			},
			contains: "declared twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manifest.Resolve()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestManifestSource_Load(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "ui.toml")
	yamlPath := filepath.Join(dir, "timer.yaml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(uiManifest+"\nextra = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("package: example.com/timer\ninterfaces:\n  - name: ITimer\n"), 0o644))

	catalog, err := NewManifestSource(tomlPath, yamlPath).Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"timer.ITimer", "ui.IButton"}, Names(catalog.Interfaces))
	require.Len(t, catalog.Warnings, 1)
	assert.Contains(t, catalog.Warnings[0], "ui.toml")
}

func TestManifestSource_UnsupportedExtension(t *testing.T) {
	_, err := NewManifestSource("catalog.json").Load(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest")
}

func TestManifestSource_Filter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui.toml")
	require.NoError(t, os.WriteFile(path, []byte(uiManifest), 0o644))

	src := NewManifestSource(path)
	src.Exclude = []string{"IB*"}
	catalog, err := src.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, catalog.Interfaces)
}
