package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

type scrapeOptions struct {
	pages int
	proxy string
}

func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes the listing once and stores the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrapeCommand(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.pages, "pages", 0, "number of listing pages to scrape (default scraper.default_pages)")
	cmd.Flags().StringVar(&opts.proxy, "proxy", "", "proxy URL for every request")
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, opts *scrapeOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config()

	pages := opts.pages
	if pages == 0 {
		pages = cfg.Scraper.DefaultPages
	}
	if pages < 1 || pages > cfg.Scraper.MaxPages {
		return fmt.Errorf("pages must be between 1 and %d", cfg.Scraper.MaxPages)
	}
	if _, err := catalog.ParseProxy(opts.proxy); err != nil {
		return err
	}

	summary, err := appInstance.Run(cmd.Context(), pages, opts.proxy)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	appInstance.Logger().Info("scrape command finished",
		zap.String("run_id", summary.RunID),
		zap.String("location", summary.Location),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d products from %d pages.\n", len(summary.Products), pages)
	return nil
}
