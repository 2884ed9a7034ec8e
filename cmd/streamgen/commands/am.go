package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/streamgen/am"
	"github.com/teranos/streamgen/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show and manage streamgen configuration",
	Long: `am - Show and manage streamgen configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. User config (~/.config/streamgen/streamgen.toml)
3. Project config (streamgen.toml, searched upward from the working directory)
4. Environment variables (STREAMGEN_* prefix, e.g. STREAMGEN_GENERATE_OUTPUT)
5. Command line flags

Examples:
  streamgen am show                         # Show current configuration
  streamgen am show --format json           # Show configuration as JSON
  streamgen am get generate.output          # Get a specific value
  streamgen am set generate.workers 4       # Update the project config
  streamgen am validate                     # Validate current configuration
  streamgen am where                        # Show where each value comes from`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective streamgen configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., generate.output, watch.debounce_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in the project config",
	Long: `Write one setting into the project streamgen.toml, creating the file in
the working directory when no project config exists. The previous file is
kept as a rotating backup.

Values are parsed as booleans, integers or comma separated lists where
the key expects one; everything else is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current streamgen configuration is valid",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and the source of every effective
setting.`,
	RunE: runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Fprintf(out, "# streamgen configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Fprintf(out, "# streamgen configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	key := args[0]
	v := am.GetViper()
	if !v.IsSet(key) || strings.HasPrefix(key, "_") {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	if _, err := am.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	current := am.GetViper()
	if !current.IsSet(key) {
		return errors.WithHint(errors.Newf("configuration key %q not found", key),
			"run 'streamgen am show' to list the available keys")
	}
	value, err := parseValue(raw, current.Get(key))
	if err != nil {
		return errors.Wrapf(err, "invalid value for %s", key)
	}

	path := am.FindProjectConfig(".")
	if path == "" {
		path = am.ConfigFileName
	}
	if err := am.UpdateSetting(path, key, value); err != nil {
		return err
	}

	// the written file must still load and validate
	am.Reset()
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		pterm.Warning.WithWriter(cmd.OutOrStdout()).Printfln("%s updated, but the configuration is invalid: %v", path, err)
		return nil
	}
	pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Set %s = %v in %s", key, value, path)
	return nil
}

// parseValue converts raw to the type of the setting's current value
func parseValue(raw string, current interface{}) (interface{}, error) {
	switch current.(type) {
	case bool:
		return strconv.ParseBool(raw)
	case int, int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return int64(n), nil
	case []string, []interface{}:
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return raw, nil
	}
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return fmt.Errorf("failed to get config introspection: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(out, "  2. [USER]     ~/.config/streamgen/streamgen.toml")
	fmt.Fprintln(out, "  3. [PROJECT]  ./streamgen.toml (searches up directories)")
	fmt.Fprintln(out, "  4. [ENV]      STREAMGEN_* environment variables")
	fmt.Fprintln(out)

	sourceOrder := []am.ConfigSource{
		am.SourceDefault,
		am.SourceUser,
		am.SourceProject,
		am.SourceEnvironment,
	}

	fmt.Fprintln(out, "Active configuration:")
	for _, source := range sourceOrder {
		var settings []am.SettingInfo
		path := ""
		for _, s := range intro.Settings {
			if s.Source == source {
				settings = append(settings, s)
				if path == "" {
					path = s.SourcePath
				}
			}
		}
		if len(settings) == 0 {
			continue
		}

		switch {
		case source == am.SourceDefault:
			fmt.Fprintf(out, "\n%s: %d settings\n", source, len(settings))
		case source == am.SourceEnvironment:
			fmt.Fprintf(out, "\n%s: %d settings from environment variables\n", source, len(settings))
		default:
			fmt.Fprintf(out, "\n%s: %d settings from %s\n", source, len(settings), path)
		}

		for _, s := range settings {
			valueStr := fmt.Sprintf("%v", s.Value)
			if len(valueStr) > 50 {
				valueStr = valueStr[:47] + "..."
			}
			if source == am.SourceEnvironment {
				fmt.Fprintf(out, "  %s = %s (%s)\n", s.Key, valueStr, s.SourcePath)
			} else {
				fmt.Fprintf(out, "  %s = %s\n", s.Key, valueStr)
			}
		}
	}
	return nil
}
