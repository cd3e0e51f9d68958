package main

import "github.com/spf13/cobra"

type rootFlags struct {
	configPath string
	dev        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "forum-notifier",
		Short:        "Relay forum notifications to Telegram and handle Telegram replies and likes",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml", "Path to the YAML config file.")
	cmd.PersistentFlags().BoolVar(&flags.dev, "dev", false, "Developer mode: debug logs, console output, no-op Telegram client without a token.")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newWebhookCmd(flags))
	cmd.AddCommand(newTokenCmd(flags))
	cmd.AddCommand(newSeedCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}
