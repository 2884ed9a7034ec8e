package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/streamgen/errors"
)

var (
	globalConfig  *Config
	viperInstance *viper.Viper

	// ConfigSources records where every key set by a file came from during
	// the last Load
	ConfigSources = map[string]SourceInfo{}
)

// Load reads the streamgen configuration for the working directory.
// The result is cached until Reset.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine working directory")
	}

	v, sources, err := newViper(dir, userConfigPath())
	if err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	viperInstance = v
	ConfigSources = sources
	globalConfig = cfg
	return globalConfig, nil
}

// LoadFrom reads the configuration the way Load does, searching for
// streamgen.toml upward from dir, without caching and without user config.
func LoadFrom(dir string) (*Config, error) {
	v, _, err := newViper(dir, "")
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// GetViper returns the Viper instance of the last Load
func GetViper() *viper.Viper {
	if viperInstance == nil {
		v := viper.New()
		SetDefaults(v)
		return v
	}
	return viperInstance
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	config.Root = v.GetString(rootKey)
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path, on top of
// the defaults and without environment overrides
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	v.Set(rootKey, filepath.Dir(configPath))

	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// rootKey holds the directory relative paths are resolved against. It is
// not part of the file format.
const rootKey = "_root"

// newViper layers defaults, the user config, the project config and
// STREAMGEN_* environment variables, lowest precedence first. Files are
// merged as config maps so environment variables still override them.
func newViper(dir, userConfig string) (*viper.Viper, map[string]SourceInfo, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	sources := make(map[string]SourceInfo)
	root := dir

	var layers []SourceInfo
	if userConfig != "" {
		layers = append(layers, SourceInfo{Source: SourceUser, Path: userConfig})
	}
	if project := FindProjectConfig(dir); project != "" {
		layers = append(layers, SourceInfo{Source: SourceProject, Path: project})
		root = filepath.Dir(project)
	}

	for _, layer := range layers {
		if _, err := os.Stat(layer.Path); err != nil {
			continue
		}
		file := viper.New()
		file.SetConfigFile(layer.Path)
		file.SetConfigType("toml")
		if err := file.ReadInConfig(); err != nil {
			return nil, nil, errors.WithHintf(
				errors.Wrapf(err, "failed to read config file %s", layer.Path),
				"fix or remove %s", layer.Path)
		}
		if err := v.MergeConfigMap(file.AllSettings()); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to merge config file %s", layer.Path)
		}
		for _, key := range file.AllKeys() {
			sources[key] = layer
		}
		if layer.Source == SourceProject {
			v.SetConfigFile(layer.Path)
		}
	}

	v.Set(rootKey, root)
	return v, sources, nil
}

// FindProjectConfig searches for streamgen.toml by walking up from dir.
// Returns the path of the first file found, or "" if none.
func FindProjectConfig(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// userConfigPath returns the per-user config file, e.g.
// ~/.config/streamgen/streamgen.toml
func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "streamgen", ConfigFileName)
}

// Resolve returns p relative to the configuration root unless it is absolute
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}
