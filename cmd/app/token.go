package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"telegram-forum-notifier/internal/config"
	"telegram-forum-notifier/internal/infra/web"
)

func newTokenCmd(flags *rootFlags) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a host API token for the forum",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath, flags.dev)
			if err != nil {
				return err
			}
			if cfg.Admin.JWTSecret == "" {
				return errors.New("admin.jwt_secret is not set")
			}
			tok, err := web.NewAuthManager(cfg.Admin.JWTSecret, ttl).Mint(subject)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "forum", "Token subject.")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime; 0 never expires.")
	return cmd
}
