package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textchecker/internal/version"
)

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "textchecker", version.String())
			return err
		},
	}
}
