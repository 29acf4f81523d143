package main

import (
	"time"

	"github.com/spf13/cobra"

	"fdg/internal/config"
	"fdg/internal/errors"
	"fdg/internal/headers"
	"fdg/internal/logging"
	"fdg/internal/project"
	"fdg/internal/storage"
	"fdg/internal/version"
)

var (
	// workspaceFlag is the CLI --workspace flag value
	workspaceFlag string
	// formatFlag is the CLI --format flag value
	formatFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fdg",
	Short: "FDG - Fuzz Driver Generator",
	Long: `FDG generates libFuzzer drivers for C/C++ libraries. It resolves the
top-level headers of a built library through compiler include traces, extracts
the exported API surface, and prompts a language model to assemble drivers
that exercise it.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("FDG version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", ".",
		"Workspace root containing data/ and output/")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json",
		"Output format (json, human)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: trace, debug, info, warn, error (default from config)")
}

// newLogger builds the command logger from config and flags. The CLI flag
// wins over the config file.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.ParseLevel(level),
	})
}

// setup loads the workspace configuration and opens the target library.
func setup(library string) (*config.Config, *project.Project, *logging.Logger, error) {
	cfg, err := config.LoadConfig(workspaceFlag)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)

	proj, err := project.Open(workspaceFlag, library)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, proj, logger, nil
}

// newResolver wires a header resolver for the library, with the persistent
// cache attached when enabled. The returned closer releases the cache
// database and is safe to call when caching is off.
func newResolver(cfg *config.Config, proj *project.Project, logger *logging.Logger, useCache bool) (*headers.Resolver, func(), error) {
	tracer := &headers.ClangTracer{
		Binary:  cfg.Compiler.Binary,
		Timeout: time.Duration(cfg.Compiler.TraceTimeoutMs) * time.Millisecond,
		Logger:  logger,
	}

	opts := headers.Options{
		Tracer:         tracer,
		Logger:         logger,
		IgnorePrefixes: cfg.Compiler.IgnorePrefixes,
		Workers:        cfg.Compiler.Workers,
	}

	closer := func() {}
	if useCache && cfg.Cache.Enabled {
		db, err := storage.Open(workspaceFlag, logger)
		if err != nil {
			return nil, nil, errors.New(errors.CacheError,
				"failed to open the header cache", err)
		}
		cache, err := storage.NewCache(db)
		if err != nil {
			db.Close()
			return nil, nil, errors.New(errors.CacheError,
				"failed to initialize the header cache", err)
		}
		opts.Cache = cache
		closer = func() { _ = db.Close() }
	}

	return headers.NewResolver(proj, opts), closer, nil
}
