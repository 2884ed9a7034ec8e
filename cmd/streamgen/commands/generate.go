package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/streamgen/streamgen"
)

// GenerateCmd runs one generation pass into the output directory
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate stream adapter units",
	Long: `Load the interface catalog, synthesize an On<Event>AsStream adapter for
every usable event and write one <Interface>Extensions.g.go unit per
interface into the output directory.

Units that fail validation are reported as SG998 and not written.

Examples:
  streamgen generate                         # Use streamgen.toml
  streamgen generate -o internal/streams     # Override the output directory
  streamgen generate -m api/events.yaml      # Read a manifest instead of packages
  streamgen generate --json                  # Diagnostics as JSON lines`,
	RunE: runGenerate,
}

var generateOpts generateFlags

func init() {
	addGenerateFlags(GenerateCmd, &generateOpts)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &generateOpts)
	if err != nil {
		return err
	}
	emitter := streamgen.NewDirEmitter(cfg.Resolve(cfg.Generate.Output))
	summary, err := runPass(cmd.Context(), cmd, cfg, emitter)
	if err != nil {
		return err
	}
	return passError(summary)
}
