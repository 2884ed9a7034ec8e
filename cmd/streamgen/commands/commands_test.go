package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/streamgen/am"
	"github.com/teranos/streamgen/logger"
)

const projectConfig = `
[generate]
source = "manifest"
manifests = ["events.toml"]
output = "streams"
package_path = "example.com/app/streams"
`

const eventsManifest = `
package = "example.com/ui"

[[callbacks]]
type = "PressedHandler"
params = [{ name = "code", type = "int" }]

[[interfaces]]
name = "IButton"
events = [
  { name = "Pressed", callback = "PressedHandler" },
  { name = "Timeout", callback = "func()" },
]
`

// newTestCmd returns a command carrying the root's persistent flags and the
// flags register adds, parsed from args
func newTestCmd(t *testing.T, register func(*cobra.Command), args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().CountP("verbose", "v", "")
	cmd.Flags().Bool("json", false, "")
	if register != nil {
		register(cmd)
	}
	require.NoError(t, cmd.ParseFlags(args))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// newProject creates a project directory and makes it the working directory
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)
	am.Reset()
	t.Cleanup(am.Reset)
	return dir
}

// observeLogs routes the global logger into an observer for the test
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Logger = prev })
	return logs
}

func TestGenerateThenCheck(t *testing.T) {
	dir := newProject(t, map[string]string{
		"streamgen.toml": projectConfig,
		"events.toml":    eventsManifest,
	})

	cmd, _ := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &generateOpts) })
	require.NoError(t, runGenerate(cmd, nil))

	unit, err := os.ReadFile(filepath.Join(dir, "streams", "ButtonExtensions.g.go"))
	require.NoError(t, err)
	assert.Contains(t, string(unit), "package streams")
	assert.Contains(t, string(unit), "func (ButtonStreamExtensions) OnPressedAsStream(ctx context.Context, self ui.IButton) *stream.Stream[int] {")
	assert.Contains(t, string(unit), "func (ButtonStreamExtensions) OnTimeoutAsStream(ctx context.Context, self ui.IButton) *stream.Stream[stream.Unit] {")

	cmd, out := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &checkOpts) })
	require.NoError(t, runCheck(cmd, nil))
	assert.Contains(t, out.String(), "up to date")
}

func TestCheck_ReportsDifferences(t *testing.T) {
	dir := newProject(t, map[string]string{
		"streamgen.toml": projectConfig,
		"events.toml":    eventsManifest,
		"streams/ButtonExtensions.g.go": "// Code generated by streamgen. DO NOT EDIT.\n\npackage streams\n",
		"streams/OldExtensions.g.go":    "// Code generated by streamgen. DO NOT EDIT.\n\npackage streams\n",
		"streams/doc.go":                "package streams\n",
	})

	cmd, out := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &checkOpts) })
	err := runCheck(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of date")
	assert.Contains(t, out.String(), "changed: ButtonExtensions.g.go")
	assert.Contains(t, out.String(), "stale:   OldExtensions.g.go")
	assert.NotContains(t, out.String(), "doc.go")

	// check never writes into the output directory
	_, err = os.Stat(filepath.Join(dir, "streams", "OldExtensions.g.go"))
	assert.NoError(t, err)
}

func TestGenerate_FlagOverrides(t *testing.T) {
	dir := newProject(t, map[string]string{
		"streamgen.toml": projectConfig,
		"events.toml":    eventsManifest,
	})

	cmd, _ := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &generateOpts) },
		"--output", "gen/events", "--package", "events", "--canary")
	require.NoError(t, runGenerate(cmd, nil))

	assert.FileExists(t, filepath.Join(dir, "gen", "events", "ButtonExtensions.g.go"))
	assert.FileExists(t, filepath.Join(dir, "gen", "events", "streamgen.g.go"))
	assert.NoFileExists(t, filepath.Join(dir, "streams", "ButtonExtensions.g.go"))

	unit, err := os.ReadFile(filepath.Join(dir, "gen", "events", "ButtonExtensions.g.go"))
	require.NoError(t, err)
	assert.Contains(t, string(unit), "package events")
}

func TestGenerate_InvalidConfig(t *testing.T) {
	newProject(t, map[string]string{
		"streamgen.toml": "[generate]\nworkers = -1\n",
	})

	cmd, _ := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &generateOpts) })
	err := runGenerate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestInit(t *testing.T) {
	dir := newProject(t, map[string]string{"go.mod": "module example.com/app\n\ngo 1.24\n"})

	cmd, out := newTestCmd(t, func(c *cobra.Command) {
		c.Flags().BoolVarP(&initForce, "force", "f", false, "")
	})
	require.NoError(t, runInit(cmd, []string{dir}))
	assert.Contains(t, out.String(), "Created")

	cfg, err := am.LoadFromFile(filepath.Join(dir, am.ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "example.com/app/streams", cfg.Generate.PackagePath)
	assert.Equal(t, am.DefaultOutput, cfg.Generate.Output)
	require.NoError(t, cfg.Validate())

	err = runInit(cmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cmd, _ = newTestCmd(t, func(c *cobra.Command) {
		c.Flags().BoolVarP(&initForce, "force", "f", false, "")
	}, "--force")
	require.NoError(t, runInit(cmd, []string{dir}))
}

func TestAmSet(t *testing.T) {
	dir := newProject(t, map[string]string{"streamgen.toml": projectConfig})

	cmd, out := newTestCmd(t, nil)
	require.NoError(t, runAmSet(cmd, []string{"generate.workers", "4"}))
	assert.Contains(t, out.String(), "generate.workers")

	cfg, err := am.LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Generate.Workers)
	assert.Equal(t, "example.com/app/streams", cfg.Generate.PackagePath)

	err = runAmSet(cmd, []string{"generate.nope", "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = runAmSet(cmd, []string{"generate.workers", "many"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value for generate.workers")
}

func TestAmGetAndShow(t *testing.T) {
	newProject(t, map[string]string{"streamgen.toml": projectConfig})

	cmd, out := newTestCmd(t, nil)
	require.NoError(t, runAmGet(cmd, []string{"generate.output"}))
	assert.Equal(t, "streams\n", out.String())

	assert.Error(t, runAmGet(cmd, []string{"_root"}))

	configFormat = "toml"
	t.Cleanup(func() { configFormat = "toml" })
	out.Reset()
	require.NoError(t, runAmShow(cmd, nil))
	assert.Contains(t, out.String(), `package_path = 'example.com/app/streams'`)

	configFormat = "xml"
	assert.Error(t, runAmShow(cmd, nil))
}

func TestAmWhere(t *testing.T) {
	dir := newProject(t, map[string]string{"streamgen.toml": projectConfig})
	t.Setenv("STREAMGEN_GENERATE_WORKERS", "8")

	cmd, out := newTestCmd(t, nil)
	require.NoError(t, runAmWhere(cmd, nil))

	text := out.String()
	assert.Contains(t, text, "project: ")
	assert.Contains(t, text, filepath.Join(dir, am.ConfigFileName))
	assert.Contains(t, text, "generate.workers = 8 (STREAMGEN_GENERATE_WORKERS)")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw     string
		current interface{}
		want    interface{}
		wantErr bool
	}{
		{"true", false, true, false},
		{"yes", false, nil, true},
		{"4", 0, int64(4), false},
		{"four", 0, nil, true},
		{"a, b", []string{}, []string{"a", "b"}, false},
		{"", []interface{}{}, []string{}, false},
		{"streams", "out", "streams", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseValue(tt.raw, tt.current)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion_JSON(t *testing.T) {
	cmd, out := newTestCmd(t, nil, "--json")
	require.NoError(t, VersionCmd.RunE(cmd, nil))

	var info map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.NotEmpty(t, info["go_version"])
	assert.NotEmpty(t, info["platform"])
}

func TestGenerate_LogsPassSettings(t *testing.T) {
	newProject(t, map[string]string{
		"streamgen.toml": projectConfig,
		"events.toml":    eventsManifest,
	})
	logs := observeLogs(t)

	cmd, _ := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &generateOpts) }, "-vv", "--workers", "2")
	require.NoError(t, runGenerate(cmd, nil))

	entries := logs.FilterMessage("Starting generation pass").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Debug (-vv)", fields[logger.FieldVerbosity])
	assert.Equal(t, am.SourceManifest, fields[logger.FieldSource])
	assert.EqualValues(t, 2, fields[logger.FieldWorkers])
}

func TestWatch_InitialPassFailureIsLogged(t *testing.T) {
	newProject(t, map[string]string{
		"streamgen.toml": projectConfig,
		"events.toml":    "interfaces = [",
	})
	logs := observeLogs(t)

	cmd, _ := newTestCmd(t, func(c *cobra.Command) { addGenerateFlags(c, &watchOpts) })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd.SetContext(ctx)

	require.NoError(t, runWatch(cmd, nil), "a canceled watch ends cleanly")

	entries := logs.FilterMessage("Initial pass failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}
