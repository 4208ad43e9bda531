package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"textchecker/internal/bootstrap"
	"textchecker/internal/render"
)

func (c *cli) metadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print the worker's script metadata",
		Args:  cobra.NoArgs,
		RunE:  c.runMetadata,
	}
	cmd.Flags().Bool("html", false, "print the rendered HTML panel instead of JSON")
	return cmd
}

func (c *cli) runMetadata(cmd *cobra.Command, _ []string) error {
	asHTML, err := cmd.Flags().GetBool("html")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cl, err := bootstrap.Connect(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cl.Close()

	meta, err := cl.Ready(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asHTML {
		html, err := render.NewRenderer().RenderMetadata(meta)
		if err != nil {
			return err
		}
		_, err = out.Write([]byte(html + "\n"))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
