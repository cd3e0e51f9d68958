package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/repository"
)

// newSeedCmd creates a demo user, topic and post for trying the relay locally.
func newSeedCmd(flags *rootFlags) *cobra.Command {
	var (
		username string
		chatID   string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed settings and a demo topic for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if err := a.settingsUC.Seed(ctx); err != nil {
				return err
			}

			author, err := a.users.Create(ctx, repository.NoTX, "system")
			if errors.Is(err, domain.ErrAlreadyExists) {
				_, _ = fmt.Fprintln(out, "demo data already present. No changes.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("create author: %w", err)
			}
			user, err := a.users.Create(ctx, repository.NoTX, username)
			if err != nil {
				return fmt.Errorf("create user %q: %w", username, err)
			}
			topic, err := a.topics.Create(ctx, repository.NoTX, "Welcome to the forum", "welcome-to-the-forum")
			if err != nil {
				return fmt.Errorf("create topic: %w", err)
			}
			post, err := a.posts.Create(ctx, repository.NoTX, author.ID, &model.NewPost{
				Raw:     "Reply to this post from Telegram to try the relay.",
				TopicID: topic.ID,
			})
			if err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			_, _ = fmt.Fprintf(out, "seeded: user %s (id=%d), topic %d, post %s\n", user.Username, user.ID, topic.ID, post.URL(a.cfg.Server.BaseURL))

			if chatID != "" {
				if err := a.chatLinks.BindChat(ctx, user.ID, chatID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "bound telegram chat %s to %s\n", chatID, user.Username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "demo", "Username of the demo account.")
	cmd.Flags().StringVar(&chatID, "chat-id", "", "Telegram chat id to bind to the demo account.")
	return cmd
}
