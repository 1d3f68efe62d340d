package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the HTTP API",
		Long: `Starts the HTTP server exposing POST /scrape/ and GET /products behind a
bearer token, plus health and metrics endpoints. SIGINT and SIGTERM trigger
a graceful shutdown.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	if appInstance.Config().Auth.Token == "" {
		return errors.New("auth.token is required to serve the API")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appInstance.Logger().Info("starting API", zap.Int("port", appInstance.Config().Server.Port))
	if err := appInstance.Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
