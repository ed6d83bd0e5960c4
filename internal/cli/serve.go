package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jobsite-timeclock/internal/router"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The schema is migrated on start-up, then the server
listens on server.address:server.port until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := a.service()
		if err != nil {
			return err
		}
		loc, err := a.cfg.Location()
		if err != nil {
			return err
		}
		engine := router.SetupRouter(a.cfg, router.Deps{
			DB:       a.db,
			Svc:      svc,
			Logger:   a.lg.Named("http"),
			Location: loc,
		})

		addr := fmt.Sprintf("%s:%d", a.cfg.Server.Address, a.cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.lg.Info("server listening", zap.String("addr", addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("run server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
