package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"media-aggregator/internal/aggregator"
	"media-aggregator/internal/platform/metrics"

	"github.com/spf13/cobra"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh every feed once, then serve the website",
	RunE:  serveAction,
}

func init() {
	// The root command serves too, so it takes --port as well.
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().StringVar(&port, "port", "", "listen port; overrides PORT")
	}
}

func serveAction(cmd *cobra.Command, _ []string) error {
	if port != "" {
		settings.Port = port
	}

	met := metrics.New()
	a, err := newApp(settings, log, met)
	if err != nil {
		return err
	}
	views, err := aggregator.NewRenderer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := a.svc.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	h := aggregator.NewHandler(a.svc, views, log, met)
	srv := &http.Server{Addr: ":" + settings.Port, Handler: aggregator.NewRouter(h, log, met)}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("server starting",
		slog.String("port", settings.Port),
		slog.String("media_file", settings.MediaFile),
		slog.Int("media", a.reg.Len()),
		slog.String("log_level", settings.LogLevel),
		slog.String("version", Version),
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
