package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"textchecker/internal/app"
	"textchecker/internal/bootstrap"
	"textchecker/internal/contracts"
)

// maxFixPasses bounds --all so that fixes which keep producing new messages terminate.
const maxFixPasses = 100

func (c *cli) fixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <file>",
		Short: "Apply a fix to a file",
		Long: `Apply the first available fix, optionally limited to one rule. The fixed
text is printed unless --write is given.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runFix,
	}
	cmd.Flags().String("rule", "", "only apply fixes of this rule")
	cmd.Flags().Bool("all", false, "repeat until no fix applies")
	cmd.Flags().BoolP("write", "w", false, "write the result back to the file")
	return cmd
}

func (c *cli) runFix(cmd *cobra.Command, args []string) error {
	path := args[0]
	ruleID, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cl, err := bootstrap.Connect(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cl.Close()
	checker := app.NewChecker(cl, c.extFor(path), app.WithLogger(c.logger))

	text := string(data)
	var applied []contracts.Message
	for pass := 0; pass < maxFixPasses; pass++ {
		var result contracts.FixResult
		if ruleID == "" {
			result = checker.FixAll(ctx, text)
		} else {
			result = checker.FixRule(ctx, text, ruleID)
		}
		for _, msg := range result.Remaining {
			if msg.RuleID == contracts.InternalErrorRuleID {
				return fmt.Errorf("fix %s: %s", path, msg.Message)
			}
		}
		if result.Output == text {
			break
		}
		text = result.Output
		applied = append(applied, result.Applied...)
		if !all {
			break
		}
	}

	errOut := cmd.ErrOrStderr()
	for _, msg := range applied {
		fmt.Fprintf(errOut, "fixed %s:%d:%d %s (%s)\n", path, msg.Line, msg.Column, msg.Message, msg.RuleID)
	}
	if len(applied) == 0 {
		fmt.Fprintln(errOut, "nothing to fix")
	}

	if !write {
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if len(applied) == 0 {
		return nil
	}
	return os.WriteFile(path, []byte(text), info.Mode().Perm())
}
