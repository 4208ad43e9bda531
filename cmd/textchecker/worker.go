package main

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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textchecker/internal/bootstrap"
	"textchecker/internal/channel"
	"textchecker/internal/worker"
)

func (c *cli) workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run a lint worker",
		Long: `Run a lint worker. By default it speaks the protocol on stdin/stdout;
with --listen it serves one worker per websocket connection.`,
		Args: cobra.NoArgs,
		RunE: c.runWorker,
	}
	cmd.Flags().Bool("stdio", true, "serve on stdin/stdout")
	cmd.Flags().String("listen", "", "serve over websocket on this address instead of stdio")
	return cmd
}

func (c *cli) runWorker(cmd *cobra.Command, _ []string) error {
	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}
	stdio, err := cmd.Flags().GetBool("stdio")
	if err != nil {
		return err
	}
	if !stdio && listen == "" {
		return errors.New("worker needs --stdio or --listen")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if listen != "" {
		return c.serveWorkers(ctx, listen)
	}

	codec, err := channel.CodecByName(c.cfg.Codec)
	if err != nil {
		return err
	}
	e, err := bootstrap.Engine(c.cfg)
	if err != nil {
		return err
	}
	conn := channel.NewWorkerStream(cmd.InOrStdin(), cmd.OutOrStdout(), codec)
	defer conn.Close()
	return worker.NewHandler(e, c.logger).Serve(ctx, conn)
}

// serveWorkers runs one handler, with its own engine, per websocket connection.
func (c *cli) serveWorkers(ctx context.Context, addr string) error {
	upgrader := channel.NewUpgrader()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		e, err := bootstrap.Engine(c.cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		conn, err := upgrader.Accept(w, r)
		if err != nil {
			c.logger.Warn("worker upgrade failed", "error", err)
			return
		}
		defer conn.Close()
		if err := worker.NewHandler(e, c.logger).Serve(r.Context(), conn); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("worker connection failed", "remote", r.RemoteAddr, "error", err)
		}
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("worker listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("worker server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
