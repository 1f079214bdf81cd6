package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/explorer"
	"github.com/facet-dev/facet/internal/cli/config"
	"github.com/facet-dev/facet/internal/cli/ui"
	"github.com/facet-dev/facet/internal/demo"
)

var exploreAddr string

// NewExploreCommand creates the explore command
func NewExploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Serve the registry explorer over HTTP",
		Long: `Run the registry explorer: a small JSON API over the live type
registry. Responses are produced by the engine serializing its own
metadata descriptors, so the explorer doubles as a serializer demo.`,
		Example: `  facet explore
  facet explore --addr 0.0.0.0:9000
  facet explore --verbose`,
		RunE: runExplore,
	}

	cmd.Flags().StringVar(&exploreAddr, "addr", "", "Listen address (host:port, default from config)")

	return cmd
}

func runExplore(cmd *cobra.Command, args []string) error {
	demo.Register()

	addr := exploreAddr
	if addr == "" {
		addr = "127.0.0.1:8787"
		if cfg, err := config.Load(); err == nil {
			addr = cfg.Explore.Addr
		}
	}

	log := newLogger(rootVerbose)
	defer log.Sync()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}

	w := cmd.OutOrStdout()
	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Fprintf(w, "Explorer listening on http://%s\n\n", ln.Addr())

	endpoints := ui.NewList(w, false, rootNoColor)
	endpoints.AddItem(fmt.Sprintf("http://%s/types", ln.Addr()))
	endpoints.AddItem(fmt.Sprintf("http://%s/types/{name}", ln.Addr()))
	endpoints.AddItem(fmt.Sprintf("http://%s/stats", ln.Addr()))
	endpoints.Render()

	fmt.Fprintln(w, "\nPress Ctrl+C to stop")

	srv := &http.Server{Handler: explorer.Handler(explorer.WithLogger(log))}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("explorer server failed: %w", err)
		}
		return nil
	case <-sigCh:
		fmt.Fprintln(w, "\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}
