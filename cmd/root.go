package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/app"
	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/config"
	"github.com/JakeFAU/catalog-scraper/internal/logging"
	"github.com/JakeFAU/catalog-scraper/internal/scraper"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use. Tests inject a
// fake through newApp.
type App interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Store() catalog.ProductStore
	Run(ctx context.Context, pages int, proxy string) (scraper.Summary, error)
	Serve(ctx context.Context) error
}

// newApp is the application factory.
var newApp = func(ctx context.Context, cfgFile string) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "catalog-scraper",
		Short: "Scrapes WooCommerce product listings into a JSON document.",
		Long: `catalog-scraper fetches the paginated product listing of a WooCommerce
shop, extracts title, price, and image for every valid product, and stores
the result as a JSON document. It runs as an authenticated HTTP API or as a
one-shot command.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); env vars use the SCRAPER_ prefix")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newProductsCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
