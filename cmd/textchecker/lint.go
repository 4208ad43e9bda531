package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textchecker/internal/app"
	"textchecker/internal/bootstrap"
)

func (c *cli) lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "Lint files and report messages",
		Long:  "Lint files concurrently through one worker. Exits with status 1 when any message is reported.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runLint,
	}
	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "files linted concurrently")
	cmd.Flags().String("color", "auto", "colorize output (auto|on|off)")
	return cmd
}

func (c *cli) runLint(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if err := applyColorFlag(cmd); err != nil {
		return err
	}

	ctx := cmd.Context()
	cl, err := bootstrap.Connect(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cl.Close()

	reports := make([]fileReport, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range args {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			text := string(data)
			checker := app.NewChecker(cl, c.extFor(path), app.WithLogger(c.logger))
			report := fileReport{Path: path, Text: text}
			for _, result := range checker.LintText(gctx, text) {
				report.Messages = append(report.Messages, result.Messages...)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	for _, report := range reports {
		printReport(out, report)
		total += len(report.Messages)
	}
	printSummary(out, len(reports), total)
	if total > 0 {
		return errFindings
	}
	return nil
}

// extFor picks the extension sent to the worker for path.
func (c *cli) extFor(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return c.cfg.Ext
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color %q (want auto, on or off)", mode)
	}
	return nil
}
