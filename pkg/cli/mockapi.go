package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/botflow/internal/testutil/mockapi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newMockAPICommand(rt *runtime) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Run a local fake of the bot template API",
		Long: fmt.Sprintf(`Serve an in-memory bot template API seeded with sample templates, for
trying the CLI and terminal UI without a back office.

Log in with username %q and password %q. Process metrics are served
on /metrics.

Examples:
  botflow mock-api --addr 127.0.0.1:8000
  botflow login --host 127.0.0.1:8000 --username %s`,
			mockapi.DefaultUsername, mockapi.DefaultPassword, mockapi.DefaultUsername),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			r := chi.NewRouter()
			r.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
			r.Mount("/", mockapi.New(mockapi.WithLogger(rt.logger)).Handler())

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mock API listening on http://%s\n", ln.Addr())

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down mock API: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Mock API stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	return cmd
}
