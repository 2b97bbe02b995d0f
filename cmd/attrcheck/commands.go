package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/cache"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/config"
	"github.com/viant/attrcheck/hook"
	"github.com/viant/attrcheck/logger"
	"go.uber.org/zap"
)

// Version is set at build time
var Version = "dev"

// errIssues signals that the check reported errors; it is not printed
var errIssues = errors.New("type errors found")

type checkOptions struct {
	configPath   string
	format       string
	cacheDir     string
	cacheBackend string
	noCache      bool
	noColor      bool
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, errIssues) {
			return 1
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(stderr, "hint: %s\n", hint)
		}
		return 2
	}
	return 0
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "attrcheck",
		Short:         "Type checks PynamoDB models and attributes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCommand(stdout))
	root.AddCommand(newVersionCommand(stdout))
	return root
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			title := color.New(color.FgCyan, color.Bold)
			title.Fprint(stdout, "attrcheck version: ")
			fmt.Fprintln(stdout, Version)
			title.Fprint(stdout, "Go version: ")
			fmt.Fprintln(stdout, runtime.Version())
		},
	}
}

func newCheckCommand(stdout io.Writer) *cobra.Command {
	options := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check Python files and packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd, options, args, stdout)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&options.configPath, "config", "", "config file (default ./attrcheck.yaml)")
	flags.StringVar(&options.format, "format", "", "output format: text or json")
	flags.StringVar(&options.cacheDir, "cache-dir", "", "cache directory, or database path for the sqlite backend")
	flags.StringVar(&options.cacheBackend, "cache-backend", "", "cache backend: fs or sqlite")
	flags.BoolVar(&options.noCache, "no-cache", false, "disable the incremental cache")
	flags.BoolVar(&options.noColor, "no-color", false, "disable colored output")
	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, options *checkOptions, paths []string, stdout io.Writer) error {
	cfg, err := config.Load(options.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, options)
	if err = cfg.Validate(); err != nil {
		return err
	}
	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	buildOptions := []checker.Option{checker.WithLogger(log)}
	if cfg.HasPlugin(config.PluginPynamoDB) {
		buildOptions = append(buildOptions, checker.WithPlugin(hook.New(log)))
	}
	if cfg.Cache.Enabled {
		store, err := openStore(cfg.Cache, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warnw("failed to close cache", "error", err)
			}
		}()
		buildOptions = append(buildOptions, checker.WithCache(store))
	}

	URLs, err := toURLs(paths)
	if err != nil {
		return err
	}
	build := checker.New(buildOptions...)
	if detected, err := build.Project(ctx, URLs[0]); err == nil {
		log.Infow("project detected", "root", detected.Root, "kind", detected.Kind, "name", detected.Name)
	}
	result, err := build.CheckURLs(ctx, URLs...)
	if err != nil {
		return err
	}
	log.Infow("check finished", "files", result.Files, "checked", len(result.Checked), "cached", len(result.Cached))

	relativePaths(result.Diagnostics)
	printer := &report.Printer{Format: report.Format(cfg.Output.Format), NoColor: !cfg.Output.Color}
	if err = printer.Print(stdout, result.Diagnostics, result.Files); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	if result.Diagnostics.HasErrors() {
		return errIssues
	}
	return nil
}

// applyFlags lets explicitly set flags win over the configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config, options *checkOptions) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = options.format
	}
	if flags.Changed("no-color") {
		cfg.Output.Color = !options.noColor
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = options.cacheDir
	}
	if flags.Changed("cache-backend") {
		cfg.Cache.Backend = options.cacheBackend
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !options.noCache
	}
}

func openStore(cfg config.CacheConfig, log *zap.SugaredLogger) (cache.Store, error) {
	location := cfg.Dir
	if cfg.Backend == cache.BackendFS && !strings.Contains(location, "://") {
		dir, err := filepath.Abs(location)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid cache directory %s", location)
		}
		location = fileURL(dir)
	}
	return cache.Open(cfg.Backend, location, log)
}

func toURLs(paths []string) ([]string, error) {
	var result []string
	for _, candidate := range paths {
		if strings.Contains(candidate, "://") {
			result = append(result, candidate)
			continue
		}
		location, err := filepath.Abs(candidate)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path %s", candidate)
		}
		result = append(result, fileURL(location))
	}
	return result, nil
}

// relativePaths shows local files relative to the working directory
func relativePaths(diagnostics report.Diagnostics) {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	for _, item := range diagnostics {
		if !strings.HasPrefix(item.Path, "file://") {
			continue
		}
		if relative, err := filepath.Rel(cwd, filepath.FromSlash(strings.TrimPrefix(item.Path, "file://"))); err == nil {
			item.Path = relative
		}
	}
}

func fileURL(location string) string {
	return "file://" + filepath.ToSlash(location)
}
