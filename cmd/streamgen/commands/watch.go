package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/streamgen/am"
	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/logger"
	"github.com/teranos/streamgen/streamgen"
)

// WatchCmd regenerates units whenever their inputs change
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate units when inputs change",
	Long: `Run a generation pass, then watch the Go sources (or manifests) and
streamgen.toml and regenerate once changes have settled.

Passes are debounced by watch.debounce_ms and never run more often than
once per watch.min_interval_ms. Editing streamgen.toml reloads the
configuration before the next pass.

Examples:
  streamgen watch          # Watch with streamgen.toml settings
  streamgen watch -v       # Also show info diagnostics`,
	RunE: runWatch,
}

var watchOpts generateFlags

func init() {
	addGenerateFlags(WatchCmd, &watchOpts)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &watchOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := runPass(ctx, cmd, cfg, streamgen.NewDirEmitter(cfg.Resolve(cfg.Generate.Output))); err != nil {
		logger.Errorw("Initial pass failed", logger.FieldError, err)
	}

	watcher, err := am.NewWatcher(cfg.Debounce(), cfg.MinInterval())
	if err != nil {
		return err
	}
	defer watcher.Close()
	am.SetGlobalWatcher(watcher)
	defer am.SetGlobalWatcher(nil)

	inputs, err := watchInputs(watcher, cfg)
	if err != nil {
		return err
	}

	watcher.OnChange(func(ctx context.Context, changed []string) error {
		logger.Infow("Inputs changed", logger.FieldCount, len(changed), logger.FieldFile, changed[0])

		if configChanged(changed) {
			am.Reset()
			reloaded, err := loadConfig(cmd, &watchOpts)
			if err != nil {
				pterm.Error.WithWriter(cmd.ErrOrStderr()).Printfln("Configuration not reloaded: %v", err)
			} else {
				cfg = reloaded
				logger.Infow("Configuration reloaded", logger.FieldConfig, cfg.String())
			}
		}

		if _, err := runPass(ctx, cmd, cfg, streamgen.NewDirEmitter(cfg.Resolve(cfg.Generate.Output))); err != nil {
			logger.Errorw("Regeneration failed", logger.FieldError, err)
		}
		return nil
	})

	pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("Watching %d inputs for changes (Ctrl+C to stop)", inputs)

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchInputs registers the source tree or the manifests, and the project
// configuration. The output directory is never watched.
func watchInputs(watcher *am.Watcher, cfg *am.Config) (int, error) {
	var paths []string
	if cfg.Generate.Source == am.SourceManifest {
		for _, m := range cfg.Generate.Manifests {
			paths = append(paths, cfg.Resolve(m))
		}
	} else {
		paths = append(paths, cfg.Resolve(cfg.Generate.Dir))
	}
	if project := am.FindProjectConfig(cfg.Root); project != "" {
		paths = append(paths, project)
	}

	output := cfg.Resolve(cfg.Generate.Output)
	for _, p := range paths {
		if err := watcher.Add(p, output); err != nil {
			return 0, errors.Wrapf(err, "failed to watch %s", p)
		}
	}
	return len(paths), nil
}

func configChanged(changed []string) bool {
	for _, p := range changed {
		if filepath.Base(p) == am.ConfigFileName {
			return true
		}
	}
	return false
}
