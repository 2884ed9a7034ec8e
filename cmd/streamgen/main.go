package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/streamgen/cmd/streamgen/commands"
	"github.com/teranos/streamgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "streamgen",
	Short: "Generate stream adapters for event-exposing Go interfaces",
	Long: `streamgen - stream adapters for event-exposing Go interfaces.

streamgen finds interfaces that expose events as Add<Event>/Remove<Event>
method pairs and generates, per interface, a file of adapters turning every
event into a push stream:

  func (ButtonStreamExtensions) OnPressedAsStream(ctx context.Context, self ui.IButton) *stream.Stream[int]

Subscribing to the stream registers a handler; cancelling the subscription
removes it again.

Available commands:
  generate - Generate adapter units into the output directory
  check    - Verify generated units are up to date
  watch    - Regenerate whenever inputs change
  init     - Write a streamgen.toml with defaults
  am       - Show and manage configuration
  version  - Show version information

Examples:
  streamgen init                   # Create streamgen.toml
  streamgen generate -v            # Generate, reporting every diagnostic
  streamgen check                  # Fail when units are stale (CI)
  streamgen watch                  # Regenerate on change`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit diagnostics and logs as JSON")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
