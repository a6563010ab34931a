package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cxd309/abs-engine/internal/clock"
	"github.com/cxd309/abs-engine/internal/config"
	"github.com/cxd309/abs-engine/internal/engine"
	"github.com/cxd309/abs-engine/internal/server"
)

func serveCmd(envFiles ...string) *cobra.Command {
	var (
		port     int
		interval time.Duration
		scenario string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live session over HTTP with a server-sent event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("interval") {
				cfg.TickInterval = interval
			}
			if cmd.Flags().Changed("scenario") {
				cfg.ScenarioPath = scenario
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP server port")
	cmd.Flags().DurationVar(&interval, "interval", clock.DefaultInterval, "real-time period between ticks")
	cmd.Flags().StringVar(&scenario, "scenario", "", "SessionInput JSON file (default: built-in layout)")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, err := loadScenario(cfg.ScenarioPath)
	if err != nil {
		return err
	}
	session, err := engine.NewSession(input)
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}

	srv := server.New(session)
	defer srv.Close()

	clk, err := clock.New(session, cfg.TickInterval, srv.Publish)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.S().Infow("server listening", "addr", httpSrv.Addr, "session", session.Meta().SimulationID)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := clk.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Event streams hold connections open; end them before draining.
		srv.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
