package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textchecker/internal/bootstrap"
	"textchecker/internal/config"
	"textchecker/internal/render"
	httpserver "textchecker/internal/transport/http"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the browser editor",
		Args:    cobra.NoArgs,
		RunE:    c.runServe,
	}
	cmd.Flags().String("addr", "127.0.0.1:7778", "listen address")
	_ = config.BindFlags(c.v, cmd.Flags())
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, err := bootstrap.Connect(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cl.Close()

	server := httpserver.NewPageServer(cl, render.NewRenderer(), httpserver.Options{
		Addr:   c.cfg.Addr,
		Ext:    c.cfg.Ext,
		Quiet:  c.cfg.Debounce,
		Logger: c.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx)
	})
	g.Go(func() error {
		select {
		case <-cl.Done():
			return errors.New("lint worker went away")
		case <-gctx.Done():
			return nil
		}
	})
	return g.Wait()
}
