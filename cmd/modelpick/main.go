package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/modelpick/internal/cache"
	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/client"
	"github.com/everstacklabs/modelpick/internal/config"
	"github.com/everstacklabs/modelpick/internal/fetcher"
	"github.com/everstacklabs/modelpick/internal/httpclient"
	"github.com/everstacklabs/modelpick/internal/logging"
	"github.com/everstacklabs/modelpick/internal/render"
	"github.com/everstacklabs/modelpick/internal/validate"
)

var version = "dev"

// Exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitConfig    = 2
	ExitTransport = 3
	ExitSchema    = 4
	ExitNoMatch   = 5
)

var (
	errNoMatch          = errors.New("no model matched the requirements")
	errValidationFailed = errors.New("catalog validation failed")
)

type rootFlags struct {
	cfgFile   string
	logLevel  string
	logFormat string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return ExitOK
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "modelpick",
		Short:         "Pick the cheapest OpenRouter model that meets your requirements",
		Long:          "Fetches the OpenRouter model catalog, filters it by cost, context, features and modalities, and ranks the survivors by price.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text or json (default: from config)")

	rootCmd.AddCommand(
		selectCmd(flags),
		listCmd(flags),
		validateCmd(flags),
	)

	return rootCmd
}

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	fetcher *fetcher.OpenRouter
	closer  io.Closer
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}

	log, closer, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSize,
		MaxAgeDays: cfg.LogMaxAge,
		Console:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	hc := httpclient.New(
		httpclient.WithTimeout(cfg.HTTP.Timeout),
		httpclient.WithRateLimit(cfg.HTTP.RateLimit),
		httpclient.WithUserAgent("modelpick/"+version),
	)

	f, err := fetcher.New(cfg.OpenRouter.APIKey,
		fetcher.WithBaseURL(cfg.OpenRouter.BaseURL),
		fetcher.WithHTTPClient(hc),
		fetcher.WithLogger(log),
	)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, fetcher: f, closer: closer}, nil
}

func (a *app) client() *client.Client {
	return client.New(a.fetcher,
		client.WithLogger(a.log),
		client.WithCacheOptions(cache.WithMaxAge(a.cfg.Cache.MaxAge)),
	)
}

func listCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the whole model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.closer.Close()

			format, err := render.ParseFormat(mustString(cmd, "output"))
			if err != nil {
				return err
			}

			models, err := a.client().Models(cmd.Context(), true)
			if err != nil {
				return err
			}
			models = render.FilterByName(models, mustString(cmd, "name-filter"))

			if err := render.Write(cmd.OutOrStdout(), format, models); err != nil {
				return err
			}
			a.log.Info("catalog listed", "models", len(models))
			return nil
		},
	}

	cmd.Flags().String("output", "brief", "Output format (json, yaml, text, brief)")
	cmd.Flags().String("name-filter", "", "Only show models whose name contains this text")

	return cmd
}

func validateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Fetch the catalog and report every record problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.closer.Close()

			models, result, err := a.fetcher.Inspect(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), validate.FormatResult(result))
			a.log.Info("catalog validated",
				"models", len(models),
				"errors", len(result.Errors()),
				"warnings", len(result.Warnings()))

			if result.HasErrors() {
				return errValidationFailed
			}
			return nil
		},
	}
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var (
		ce *catalog.ConfigError
		te *catalog.TransportError
		se *catalog.SchemaError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errNoMatch):
		return ExitNoMatch
	case errors.As(err, &ce):
		return ExitConfig
	case errors.As(err, &te):
		return ExitTransport
	case errors.As(err, &se):
		return ExitSchema
	default:
		return ExitError
	}
}
