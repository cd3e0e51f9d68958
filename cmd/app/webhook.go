package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWebhookCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "setup",
		Short: "Regenerate the webhook secret and register the webhook with Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.settingsUC.SetupWebhook(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webhook registered at %s/telegram/hook/<secret>\n", a.cfg.Server.BaseURL)
			return nil
		},
	})
	return cmd
}
