package main

import (
	"fmt"
	"time"

	"github.com/anish3d/folio/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

func (c *cli) tokenCmd() *cobra.Command {
	var (
		subject string
		scope   string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a token for POST /api/revalidate or the admin health views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scope != jwt.ScopeRevalidate && scope != jwt.ScopeAdmin {
				return fmt.Errorf("unknown scope %q: want %s or %s", scope, jwt.ScopeRevalidate, jwt.ScopeAdmin)
			}
			token, err := jwt.New(c.cfg.JWT.Secret, c.cfg.JWT.Issuer).Sign(subject, scope, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "folioctl", "Token subject, logged on use")
	cmd.Flags().StringVar(&scope, "scope", jwt.ScopeRevalidate, "Token scope: revalidate or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
