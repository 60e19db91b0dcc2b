package main

import (
	"fmt"

	"github.com/anish3d/folio/internal/modules/processing/render"
	"github.com/spf13/cobra"
)

func (c *cli) pageCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "page <slug>",
		Short: "Print a note with its resolved blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "html" && format != "markdown" {
				return fmt.Errorf("unknown format %q: want json, html or markdown", format)
			}
			svc, err := c.service()
			if err != nil {
				return err
			}
			content, err := svc.Content(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch format {
			case "html":
				doc, err := render.Document(content, render.DocumentOptions{SiteTitle: c.cfg.Site.Title})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc)
				return err
			case "markdown":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Markdown(content.Blocks))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), content)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, html or markdown")
	return cmd
}
