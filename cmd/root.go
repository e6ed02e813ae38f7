// Package cmd defines and implements the CLI commands for the boxoffice executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/app"
	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/config"
	"github.com/JakeFAU/boxoffice-crawler/internal/logging"
	"github.com/JakeFAU/boxoffice-crawler/internal/pipeline"
	pkgconfig "github.com/JakeFAU/boxoffice-crawler/pkg/config"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a fake app during tests.
type App interface {
	Close()
	Logger() *zap.Logger
	Run(ctx context.Context, req boxoffice.Request) (pipeline.Result, error)
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

type rootOptions struct {
	cfgFile string
	format  string
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "boxoffice",
		Short: "Extracts ranked box office listings and enriched title metadata.",
		Long: `boxoffice fetches weekend and yearly box office rankings, follows each
ranked release to its summary and professional title pages, and emits a
structured record per title. Every page is cached on disk and fetched at
most once.`,
		SilenceUsage: true,

		// Builds the application before any subcommand's RunE. The subcommand
		// closes it, since cobra skips post-run hooks when RunE fails.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			v := viper.New()
			if err := pkgconfig.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.LoadViper(v, opts.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				_ = logger.Sync() //nolint:errcheck // best-effort flush
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.StringVarP(&opts.format, "format", "o", formatTable, "output format: table or json")
	pkgconfig.RegisterFlags(flags)

	cmd.AddCommand(
		newWeekendCmd(opts),
		newYearCmd(opts),
		newTitleCmd(opts),
		newServeCmd(),
	)
	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// runAndRender executes req and writes the result to the command's stdout.
func runAndRender(cmd *cobra.Command, opts *rootOptions, req boxoffice.Request) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	defer appInstance.Close()
	res, err := appInstance.Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("%s: %w", req, err)
	}
	return render(cmd.OutOrStdout(), opts.format, res)
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
