package main

import (
	"encoding/json"
	"io"

	"github.com/anish3d/folio/internal/app"
	"github.com/anish3d/folio/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cli struct {
	configPath string
	verbose    bool
	collection string

	cfg      *config.AppConfig
	services *app.Services
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "folioctl",
		Short:         "Inspect the Notion-backed site content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = zap.NewNop()
			if c.verbose {
				if l, err := zap.NewDevelopment(); err == nil {
					c.logger = l
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.services != nil {
				c.services.Close()
			}
			_ = c.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&c.collection, "collection", "c", "notes", "Collection to read: notes or develop")

	root.AddCommand(c.notesCmd(), c.pageCmd(), c.tokenCmd())
	return root
}

// load builds the content services on first use; token does not need them.
func (c *cli) load() (*app.Services, error) {
	if c.services != nil {
		return c.services, nil
	}
	svc, err := app.NewServices(c.logger, c.cfg, c.configPath)
	if err != nil {
		return nil, err
	}
	c.services = svc
	return svc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
