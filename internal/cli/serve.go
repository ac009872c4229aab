// internal/cli/serve.go
package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/histia/harvest/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the agents over HTTP",
	Long: `Starts the HTTP server: GET /agents, GET /agents/{name},
POST /agents/{name}/run and GET /healthz. Shuts down gracefully on SIGINT
and SIGTERM.`,
	Example: `  harvest serve
  harvest serve --addr=:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application := GetApp()
		addr := serveAddr
		if addr == "" {
			addr = application.Config.ListenAddr
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           api.NewServer(application.Registry, application.Runner),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errs := make(chan error, 1)
		go func() {
			log.Info().Str("addr", addr).Msg("http server listening")
			errs <- server.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errs:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case sig := <-stop:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")
	rootCmd.AddCommand(serveCmd)
}
