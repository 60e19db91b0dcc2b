package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/spf13/cobra"
)

func (c *cli) service() (*notes.Service, error) {
	svc, err := c.load()
	if err != nil {
		return nil, err
	}
	coll, ok := svc.Collection(c.collection)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", c.collection)
	}
	return coll, nil
}

func (c *cli) notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List notes and their tags",
	}

	var (
		opts   notes.ListOptions
		order  string
		asJSON bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List visible notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			opts.Order = notes.ParseOrder(order)
			items, err := svc.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tSLUG\tTITLE\tTAGS")
			for _, n := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.PublishedAt, n.Slug, n.Title, strings.Join(n.Tags, ","))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&opts.Tag, "tag", "", "Only notes with this tag")
	list.Flags().StringVar(&opts.Category, "category", "", "Only notes in this category")
	list.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of notes (0 for all)")
	list.Flags().StringVar(&order, "order", "desc", "Sort by publish date: asc or desc")
	list.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")

	tags := &cobra.Command{
		Use:   "tags",
		Short: "List the unique tags of visible notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			all, err := svc.Tags(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range all {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	cmd.AddCommand(list, tags)
	return cmd
}
