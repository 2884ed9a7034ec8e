package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/teranos/streamgen/am"
	"github.com/teranos/streamgen/catalog"
	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/logger"
	"github.com/teranos/streamgen/streamgen"
	"github.com/teranos/streamgen/streamgen/golang"
)

// generateFlags override configuration for a single invocation
type generateFlags struct {
	source    string
	output    string
	pkg       string
	manifests []string
	workers   int
	canary    bool
}

// addGenerateFlags registers the override flags on cmd
func addGenerateFlags(cmd *cobra.Command, f *generateFlags) {
	cmd.Flags().StringVar(&f.source, "source", "", "Catalog source: packages or manifest")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory")
	cmd.Flags().StringVarP(&f.pkg, "package", "p", "", "Output package name")
	cmd.Flags().StringSliceVarP(&f.manifests, "manifest", "m", nil, "Manifest files (implies --source manifest)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Concurrent interface pipelines (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.canary, "canary", false, "Write the streamgen.g.go marker unit")
}

// loadConfig loads the configuration, applies the flags that were set and
// validates the result
func loadConfig(cmd *cobra.Command, f *generateFlags) (*am.Config, error) {
	loaded, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	cfg := *loaded

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Generate.Source = f.source
	}
	if flags.Changed("output") {
		cfg.Generate.Output = f.output
	}
	if flags.Changed("package") {
		cfg.Generate.Package = f.pkg
	}
	if flags.Changed("manifest") {
		cfg.Generate.Source = am.SourceManifest
		cfg.Generate.Manifests = f.manifests
	}
	if flags.Changed("workers") {
		cfg.Generate.Workers = f.workers
	}
	if flags.Changed("canary") {
		cfg.Generate.EmitCanary = f.canary
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	logger.SetTheme(cfg.Log.Theme)
	return &cfg, nil
}

// newSource builds the catalog source the configuration selects
func newSource(cfg *am.Config) streamgen.Source {
	filter := catalog.Filter{Include: cfg.Generate.Include, Exclude: cfg.Generate.Exclude}

	if cfg.Generate.Source == am.SourceManifest {
		paths := make([]string, len(cfg.Generate.Manifests))
		for i, p := range cfg.Generate.Manifests {
			paths[i] = cfg.Resolve(p)
		}
		src := catalog.NewManifestSource(paths...)
		src.Filter = filter
		return src
	}

	src := catalog.NewPackagesSource(cfg.Resolve(cfg.Generate.Dir), cfg.Generate.Patterns...)
	src.Filter = filter
	src.SubscribePrefix = cfg.Events.SubscribePrefix
	src.UnsubscribePrefix = cfg.Events.UnsubscribePrefix
	return src
}

// outputPackage returns the package units are declared in. Without an
// explicit package_path the import path is derived from the enclosing module.
func outputPackage(cfg *am.Config) streamgen.Package {
	pkg := streamgen.Package{Path: cfg.Generate.PackagePath, Name: cfg.OutputPackage()}
	if pkg.Path == "" {
		path, err := catalog.ImportPath(cfg.Resolve(cfg.Generate.Output))
		if err != nil {
			logger.Debugw("Output import path unknown; local types render qualified", logger.FieldError, err)
		}
		pkg.Path = path
	}
	return pkg
}

// newReporter picks the diagnostic output: JSON lines or pterm. From -vv on
// diagnostics are also logged.
func newReporter(cmd *cobra.Command, cfg *am.Config, verbosity int) streamgen.Reporter {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var primary streamgen.Reporter
	if jsonOutput || cfg.Log.JSON {
		primary = streamgen.NewJSONReporter(cmd.OutOrStdout())
	} else {
		primary = streamgen.NewCLIReporter(verbosity).WithWriter(cmd.OutOrStdout())
	}
	if verbosity >= logger.VerbosityDebug {
		return streamgen.MultiReporter{primary, streamgen.NewLogReporter(nil)}
	}
	return primary
}

// runPass runs one generation pass into emitter
func runPass(ctx context.Context, cmd *cobra.Command, cfg *am.Config, emitter streamgen.Emitter) (streamgen.Summary, error) {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	logger.Debugw("Starting generation pass",
		logger.FieldSource, cfg.Generate.Source,
		logger.FieldWorkers, cfg.Generate.Workers,
		logger.FieldVerbosity, logger.LevelName(verbosity))

	target := golang.NewGenerator(golang.WithStreamPackage(streamgen.Package{Path: cfg.Generate.StreamPackage}))
	driver := streamgen.NewDriver(target, emitter, newReporter(cmd, cfg, verbosity), streamgen.Options{
		Local:     outputPackage(cfg),
		Workers:   cfg.Generate.Workers,
		Canary:    cfg.Generate.EmitCanary,
		Verbosity: verbosity,
	})
	return driver.Run(ctx, newSource(cfg))
}

// passError turns a summary with rejected or failed units into an error
func passError(s streamgen.Summary) error {
	if s.Rejected == 0 && s.Failed == 0 {
		return nil
	}
	return errors.Newf("%d units rejected, %d failed", s.Rejected, s.Failed)
}
