package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxlab/flowsheet/internal/api"
	"github.com/fluxlab/flowsheet/pkg/store"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the flowsheet HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.config.Serve.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

// runServe wires the runner, cache, and optional layout archive into the
// HTTP server, then blocks until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st := c.newStore(ctx)
	if st != nil {
		runner.Store = st
		defer st.Close(context.Background())
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(runner, st, c.Logger).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newStore connects the layout archive when one is configured.
// Connection failures disable archiving rather than aborting startup.
func (c *CLI) newStore(ctx context.Context) store.Store {
	uri := c.config.Store.MongoURI
	if uri == "" {
		return nil
	}
	st, err := store.NewMongoStore(ctx, uri, c.config.Store.Database)
	if err != nil {
		printWarning("Layout archive unavailable: %v", err)
		c.Logger.Warn("layout archive disabled", "err", err)
		return nil
	}
	return st
}
