package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mempirate/docparser/cache"
	"github.com/mempirate/docparser/config"
	"github.com/mempirate/docparser/fetch"
	"github.com/mempirate/docparser/log"
	"github.com/mempirate/docparser/output"
	"github.com/mempirate/docparser/parse"
	"github.com/mempirate/docparser/pipeline"
	"github.com/mempirate/docparser/store"
)

type options struct {
	configPath string
	clearCache bool
	output     string
	logLevel   string
	noProgress bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		// Fatal extraction errors were logged where they happened.
		if !parse.IsFatal(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("docparser {%s}", strings.Join(pipeline.Modes(), ",")),
		Short: "Python documentation and PEP index parser",
		Long: `Collects data from docs.python.org and peps.python.org.

Modes:
  pep              count PEP statuses and report pages that contradict the index
  whats-new        list "What's New" articles with their editors
  latest-versions  list documentation versions and their status
  download         download the A4 PDF documentation archive`,
		ValidArgs:     pipeline.Modes(),
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default is ./docparser.yaml or ./config/docparser.yaml)")
	cmd.Flags().BoolVarP(&opts.clearCache, "clear-cache", "c", false, "clear the HTTP cache before running")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", fmt.Sprintf("output format {%s}", strings.Join(output.Formats(), ",")))
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides the config file)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "don't show a progress bar")

	// Reject an unknown format before anything is fetched.
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if opts.output == "" {
			return nil
		}
		for _, f := range output.Formats() {
			if opts.output == f {
				return nil
			}
		}
		return errors.Errorf("invalid output format %q (choose from %s)", opts.output, strings.Join(output.Formats(), ", "))
	}

	return cmd
}

func run(ctx context.Context, mode string, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	closer, err := log.Configure(log.Options{Level: cfg.Log.Level, File: cfg.Log.File, Console: os.Stderr})
	if err != nil {
		return err
	}
	defer closer.Close()

	l := log.NewLogger("main")
	l.Info().Msg("Parser started")
	l.Info().Str("mode", mode).Bool("clear_cache", opts.clearCache).Str("output", opts.output).Msg("Command line arguments")

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), os.ModePerm); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}

	responses, err := cache.NewBoltCache(cfg.CachePath)
	if err != nil {
		return err
	}
	defer responses.Close()

	client := fetch.NewClient(responses,
		fetch.WithTimeout(cfg.HTTP.Timeout),
		fetch.WithUserAgent(cfg.HTTP.UserAgent),
	)

	if opts.clearCache {
		if err := client.ClearCache(); err != nil {
			return err
		}
	}

	env := &pipeline.Env{
		Fetcher:   client,
		Downloads: store.NewFileStore(cfg.DownloadsDir),
		Expected:  cfg.ExpectedStatus,
		PEPURL:    cfg.PEPURL,
		DocsURL:   cfg.DocsURL,
	}
	if !opts.noProgress {
		env.Progress = &barProgress{}
	}

	table, err := pipeline.Run(ctx, mode, env)
	if err != nil {
		if fetch.IsFetchError(err) {
			// The fetch client logged the failure; there is nothing to report.
			l.Info().Str("mode", mode).Msg("No result")
			return nil
		}
		return err
	}

	if table != nil {
		renderer := output.NewRenderer(os.Stdout, store.NewFileStore(cfg.ResultsDir))
		if err := renderer.Render(table, mode, opts.output); err != nil {
			return err
		}
	}

	l.Info().Msg("Parser finished")
	return nil
}
