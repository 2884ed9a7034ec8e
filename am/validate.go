package am

import (
	"go/token"
	"path"

	"github.com/teranos/streamgen/errors"
)

// Validate checks that the configuration is valid. Every error wraps
// errors.ErrInvalidConfig.
func (c *Config) Validate() error {
	g := c.Generate

	switch g.Source {
	case SourcePackages:
		if len(g.Patterns) == 0 {
			return invalid("generate.patterns cannot be empty for the packages source")
		}
	case SourceManifest:
		if len(g.Manifests) == 0 {
			return errors.WithHint(invalid("generate.manifests cannot be empty for the manifest source"),
				"list manifest files, e.g. manifests = [\"events.toml\"]")
		}
	default:
		return invalid("generate.source must be %q or %q, got %q", SourcePackages, SourceManifest, g.Source)
	}

	if g.Output == "" {
		return invalid("generate.output cannot be empty")
	}
	if name := c.OutputPackage(); !token.IsIdentifier(name) || token.IsKeyword(name) {
		return errors.WithHint(invalid("output package name %q is not a valid identifier", name),
			"set generate.package explicitly")
	}
	if g.StreamPackage == "" {
		return invalid("generate.stream_package cannot be empty")
	}

	// Workers: 0 = GOMAXPROCS, negative = invalid
	if g.Workers < 0 {
		return invalid("generate.workers must be >= 0, got %d", g.Workers)
	}

	for _, pattern := range append(append([]string{}, g.Include...), g.Exclude...) {
		if _, err := path.Match(pattern, ""); err != nil {
			return invalid("interface filter %q is not a valid glob", pattern)
		}
	}

	if c.Events.SubscribePrefix == "" || c.Events.UnsubscribePrefix == "" {
		return invalid("events.subscribe_prefix and events.unsubscribe_prefix cannot be empty")
	}
	if c.Events.SubscribePrefix == c.Events.UnsubscribePrefix {
		return invalid("events.subscribe_prefix and events.unsubscribe_prefix must differ, both are %q", c.Events.SubscribePrefix)
	}

	if c.Watch.DebounceMS < 0 {
		return invalid("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	if c.Watch.MinIntervalMS < 0 {
		return invalid("watch.min_interval_ms must be >= 0, got %d", c.Watch.MinIntervalMS)
	}

	switch c.Log.Theme {
	case "", "everforest", "gruvbox":
	default:
		return invalid("log.theme must be everforest or gruvbox, got %q", c.Log.Theme)
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrInvalidConfig, format, args...)
}
