package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"textchecker/internal/app"
	"textchecker/internal/bootstrap"
	"textchecker/internal/watch"
)

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch <file>...",
		Aliases: []string{"w"},
		Short:   "Re-lint files whenever they change",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.runWatch,
	}
	cmd.Flags().String("color", "auto", "colorize output (auto|on|off)")
	return cmd
}

func (c *cli) runWatch(cmd *cobra.Command, args []string) error {
	if err := applyColorFlag(cmd); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl, err := bootstrap.Connect(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cl.Close()

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	checker := app.NewChecker(cl, c.cfg.Ext, app.WithLogger(c.logger))
	w, err := watch.New(checker, c.cfg.Debounce, func(ev watch.Event) {
		mu.Lock()
		defer mu.Unlock()
		messages := ev.Result.Messages()
		if len(messages) == 0 {
			c.logger.Info("clean", "path", ev.Path)
			return
		}
		printReport(out, fileReport{Path: ev.Path, Text: ev.Result.Text, Messages: messages})
	}, c.logger)
	if err != nil {
		return err
	}
	for _, path := range args {
		if err := w.Add(path); err != nil {
			return err
		}
	}
	return w.Run(ctx)
}
