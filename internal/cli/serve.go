package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"spamlens/internal/api"
	"spamlens/internal/logger"
)

var (
	serveAddr      string
	serveEphemeral bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve classification and explanations over HTTP.

Endpoints:
  GET  /health
  GET  /api/model
  POST /api/classify   {"message": "..."}
  POST /api/explain    {"message": "...", "target": "spam", "num_features": 5, "seed": 1}
  POST /api/analyze    {"message": "..."}

Examples:
  spamlens serve --addr :8080
  spamlens serve --model model.json --ephemeral`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "keep models and cached explanations in memory only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	app, cleanup, err := loadApp(ctx, serveEphemeral)
	if err != nil {
		return err
	}
	defer cleanup()

	log := logger.FromContext(ctx)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(app, log, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr, "model", app.Runtime.Scope())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
