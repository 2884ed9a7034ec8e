package commands

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/streamgen/am"
	"github.com/teranos/streamgen/catalog"
	"github.com/teranos/streamgen/errors"
)

// InitCmd writes a streamgen.toml with the default settings
var InitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a streamgen.toml",
	Long: `Write a streamgen.toml holding the default settings into dir (default:
the working directory). When dir belongs to a Go module, the output import
path is filled in from go.mod.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	InitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing streamgen.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(err, "failed to resolve directory")
	}

	path := filepath.Join(dir, am.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.WithHint(errors.Newf("%s already exists", path), "use --force to overwrite it")
	}

	cfg := am.Default()
	if importPath, err := catalog.ImportPath(filepath.Join(dir, cfg.Generate.Output)); err == nil {
		cfg.Generate.PackagePath = importPath
	}
	if err := am.Persist(cfg, path); err != nil {
		return err
	}

	pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Created %s", path)
	return nil
}
