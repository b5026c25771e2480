// Command nanotrim-server provides a REST API for adapter trimming.
//
// Usage:
//
//	nanotrim-server [options]
//
// Options:
//
//	--host      Host to bind to (default: localhost)
//	--port      Port to listen on (default: 8080)
//	--catalog   Adapter catalog served by /api/trim (default: built-in)
//	--settings  Settings file (default: ./nanotrim.yaml)
//
// The server reads the same settings as the nanotrim command.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aria-lang/nanotrim/api"
	"github.com/aria-lang/nanotrim/api/handlers"
	"github.com/aria-lang/nanotrim/internal/config"
	"github.com/aria-lang/nanotrim/pkg/nanotrim"
)

func newServerCmd() *cobra.Command {
	var settings string
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "nanotrim-server",
		Short:         "Serve the nanotrim REST API",
		Version:       nanotrim.Version(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for key, name := range map[string]string{
				"server.host":          "host",
				"server.port":          "port",
				"server.write-timeout": "timeout",
				"trim.catalog":         "catalog",
				"trim.definitions":     "definitions",
				"trim.window":          "window",
				"scores.preset":        "preset",
			} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
					return err
				}
			}
			c, err := config.Load(v, settings)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", c.Server.Addr())
			if err != nil {
				return fmt.Errorf("could not listen on %s: %w", c.Server.Addr(), err)
			}
			return serve(ctx, ln, c)
		},
	}
	cmd.Flags().StringVar(&settings, "settings", "", "settings file (default ./nanotrim.yaml)")
	cmd.Flags().String("host", "localhost", "host to bind to")
	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().String("catalog", "", "YAML adapter catalog (default built-in)")
	cmd.Flags().StringSliceP("definitions", "d", nil, "catalog definitions to serve (default all)")
	cmd.Flags().Int("window", 0, "bases searched at each read end (0 searches whole reads)")
	cmd.Flags().String("preset", "default", "score preset: default or nanopore")
	cmd.Flags().Duration("timeout", 0, "request timeout (default from settings)")
	return cmd
}

// serve runs the API on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, c config.Config) error {
	defs, err := c.Definitions()
	if err != nil {
		return err
	}
	bc, err := c.Batch()
	if err != nil {
		return err
	}
	th, err := handlers.NewTrim(defs, bc)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      api.NewRouter(th, c.Server.WriteTimeout),
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		IdleTimeout:  c.Server.WriteTimeout,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Println("Server is shutting down...")

		sctx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		done <- server.Shutdown(sctx)
	}()

	log.Printf("nanotrim API server starting on http://%s with %d definitions (%s)", ln.Addr(), len(defs), bc.Scores)
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-done; err != nil {
		return fmt.Errorf("could not gracefully shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func main() {
	if err := newServerCmd().Execute(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("%v", err)
	}
}
