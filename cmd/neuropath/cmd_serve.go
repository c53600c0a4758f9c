package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/metrics"
	"github.com/nvandessel/neuropath/internal/ratelimit"
	"github.com/nvandessel/neuropath/internal/visualization"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decision network over HTTP",
		Long: `Start an HTTP server exposing the network as a JSON API, a DOT and HTML
view, and Prometheus metrics at /metrics.

Endpoints:
  GET  /                 HTML view
  GET  /api/health       status and size
  GET  /api/graph        JSON graph
  GET  /api/graph.dot    Graphviz graph
  GET  /api/history      recorded searches
  POST /api/neurons      {"keys": [...]}
  POST /api/connections  {"a": ..., "b": ..., "weight": ...}
  POST /api/strengthen   {"a": ..., "b": ...}
  POST /api/decay        {"rate": ...}
  POST /api/path         {"start": ..., "end": ...}

Mutations are saved to the store unless server.persist is false. Each
client may make server.rate_limit mutating requests per second.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ws, err := openWorkspace(ctx, cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			addr := ws.cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			var limiter *ratelimit.Limiter
			if ws.cfg.Server.RateLimit > 0 {
				limiter = ratelimit.NewLimiter(ws.cfg.Server.RateLimit, ws.cfg.Server.RateBurst)
				go sweepLimiter(ctx, limiter)
			}

			srv := visualization.NewServer(ws.graph, visualization.ServerOptions{
				Store:           ws.store,
				Persist:         ws.cfg.Server.Persist,
				RecordSearches:  ws.cfg.Store.RecordSearches,
				Metrics:         metrics.NewCollector(),
				Logger:          ws.logger,
				Version:         version,
				ShutdownTimeout: ws.cfg.Server.ShutdownTimeout,
				RateLimiter:     limiter,
			})

			// Handle SIGINT/SIGTERM for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			notifySignals(sigCh)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s. Press Ctrl-C to stop.\n", ws.dir, addr)
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr)")

	return cmd
}

// sweepLimiter forgets idle clients until ctx is done.
func sweepLimiter(ctx context.Context, l *ratelimit.Limiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(10 * time.Minute)
		}
	}
}
