// Package am holds the streamgen configuration: what to scan, where units
// go, how events are recognized, and how the CLI logs.
package am

// Config represents the streamgen configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate"`
	Events   EventsConfig   `mapstructure:"events" toml:"events"`
	Watch    WatchConfig    `mapstructure:"watch" toml:"watch"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`

	// Root is the directory relative paths resolve against: the directory of
	// the project streamgen.toml, or the directory loading started from
	Root string `mapstructure:"-" toml:"-"`
}

// GenerateConfig configures one generation pass
type GenerateConfig struct {
	Source    string   `mapstructure:"source" toml:"source"`       // "packages" or "manifest"
	Dir       string   `mapstructure:"dir" toml:"dir"`             // Directory packages are loaded from (default: ".")
	Patterns  []string `mapstructure:"patterns" toml:"patterns"`   // go/packages patterns (default: ["./..."])
	Manifests []string `mapstructure:"manifests" toml:"manifests"` // Manifest files for the manifest source

	Include []string `mapstructure:"include" toml:"include,omitempty"` // Interface name globs to adapt (empty = all)
	Exclude []string `mapstructure:"exclude" toml:"exclude,omitempty"` // Interface name globs to skip

	Output        string `mapstructure:"output" toml:"output"`                 // Output directory (default: "streams")
	Package       string `mapstructure:"package" toml:"package"`               // Output package name
	PackagePath   string `mapstructure:"package_path" toml:"package_path"`     // Output import path; types of this package render unqualified
	StreamPackage string `mapstructure:"stream_package" toml:"stream_package"` // Stream runtime import path

	Workers    int  `mapstructure:"workers" toml:"workers"`         // Concurrent interface pipelines (0 = GOMAXPROCS)
	EmitCanary bool `mapstructure:"emit_canary" toml:"emit_canary"` // Write streamgen.g.go on every pass
}

// EventsConfig configures how accessor pairs are recognized
type EventsConfig struct {
	SubscribePrefix   string `mapstructure:"subscribe_prefix" toml:"subscribe_prefix"`     // default: "Add"
	UnsubscribePrefix string `mapstructure:"unsubscribe_prefix" toml:"unsubscribe_prefix"` // default: "Remove"
}

// WatchConfig configures the watch command
type WatchConfig struct {
	DebounceMS    int `mapstructure:"debounce_ms" toml:"debounce_ms"`         // Quiet period before regenerating (default: 300)
	MinIntervalMS int `mapstructure:"min_interval_ms" toml:"min_interval_ms"` // Minimum time between passes (default: 1000)
}

// LogConfig configures CLI logging
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json"`   // JSON logs and diagnostics
	Theme string `mapstructure:"theme" toml:"theme"` // Console color theme: everforest, gruvbox
}

// Configuration file and environment constants
const (
	ConfigFileName = "streamgen.toml"
	EnvPrefix      = "STREAMGEN"
)

// Catalog source names
const (
	SourcePackages = "packages"
	SourceManifest = "manifest"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
