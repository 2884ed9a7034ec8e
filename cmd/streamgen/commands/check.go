package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/streamgen"
)

// CheckCmd verifies that the generated units on disk are up to date
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that generated units are up to date",
	Long: `Run a generation pass into a temporary directory and compare the result
with the output directory. Exits with an error when units changed, are
missing, or are stale (generated earlier but no longer produced).

Useful in CI to make sure generated adapters were committed.

Examples:
  streamgen check                      # Compare against the configured output
  streamgen check -o internal/streams  # Compare against another directory`,
	RunE: runCheck,
}

var checkOpts generateFlags

func init() {
	addGenerateFlags(CheckCmd, &checkOpts)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &checkOpts)
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "streamgen-check-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	emitter := streamgen.NewMemoryEmitter()
	summary, err := runPass(cmd.Context(), cmd, cfg, emitter)
	if err != nil {
		return err
	}
	if err := passError(summary); err != nil {
		return err
	}
	if err := emitter.WriteTo(cmd.Context(), tempDir); err != nil {
		return err
	}

	output := cfg.Resolve(cfg.Generate.Output)
	result, err := streamgen.CompareDirectories(tempDir, output, "go")
	if err != nil {
		return errors.Wrap(err, "failed to compare directories")
	}

	out := cmd.OutOrStdout()
	if result.UpToDate {
		pterm.Success.WithWriter(out).Printfln("Generated units in %s are up to date", output)
		return nil
	}

	pterm.Error.WithWriter(out).Printfln("Generated units in %s are out of date", output)
	for _, f := range result.Changed {
		fmt.Fprintf(out, "  changed: %s\n", f)
	}
	for _, f := range result.Missing {
		fmt.Fprintf(out, "  missing: %s\n", f)
	}
	for _, f := range result.Stale {
		fmt.Fprintf(out, "  stale:   %s\n", f)
	}
	fmt.Fprintln(out, "\nRun 'streamgen generate' to update.")

	return errors.WithHint(errors.New("generated units are out of date"), "run 'streamgen generate'")
}
