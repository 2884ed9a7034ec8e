package am

import (
	"fmt"
	"path"
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultSource            = SourcePackages
	DefaultOutput            = "streams"
	DefaultStreamPackage     = "github.com/teranos/streamgen/stream"
	DefaultSubscribePrefix   = "Add"
	DefaultUnsubscribePrefix = "Remove"
	DefaultDebounceMS        = 300
	DefaultMinIntervalMS     = 1000
	DefaultTheme             = "everforest"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.source", DefaultSource)
	v.SetDefault("generate.dir", ".")
	v.SetDefault("generate.patterns", []string{"./..."})
	v.SetDefault("generate.manifests", []string{})
	v.SetDefault("generate.include", []string{})
	v.SetDefault("generate.exclude", []string{})
	v.SetDefault("generate.output", DefaultOutput)
	v.SetDefault("generate.package", "")
	v.SetDefault("generate.package_path", "")
	v.SetDefault("generate.stream_package", DefaultStreamPackage)
	v.SetDefault("generate.workers", 0)
	v.SetDefault("generate.emit_canary", false)

	v.SetDefault("events.subscribe_prefix", DefaultSubscribePrefix)
	v.SetDefault("events.unsubscribe_prefix", DefaultUnsubscribePrefix)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
	v.SetDefault("watch.min_interval_ms", DefaultMinIntervalMS)

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultTheme)
}

// Default returns a configuration holding only default values
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, _ := LoadWithViper(v)
	return cfg
}

// OutputPackage returns the name of the package units are declared in,
// falling back to the last element of the output directory
func (c *Config) OutputPackage() string {
	if c.Generate.Package != "" {
		return c.Generate.Package
	}
	if c.Generate.PackagePath != "" {
		return path.Base(c.Generate.PackagePath)
	}
	return path.Base(c.Generate.Output)
}

// Debounce returns the watch quiet period
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// MinInterval returns the minimum time between two watch passes
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Watch.MinIntervalMS) * time.Millisecond
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Source: %s, Output: %s, Package: %s, Workers: %d}",
		c.Generate.Source, c.Generate.Output, c.OutputPackage(), c.Generate.Workers)
}
