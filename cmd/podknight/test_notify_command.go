package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podknight/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test status message and push alert",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			webhook := strings.TrimSpace(cfg.Notifications.DiscordWebhook) != ""
			ntfy := strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""
			if !webhook && !ntfy {
				fmt.Fprintln(out, "Notification not sent: no webhook or ntfy topic configured")
				return nil
			}

			var errs []error
			if webhook {
				msg := notifications.Text("🧪 podknight status channel test")
				if _, err := notifications.NewNotifier(cfg).Send(cmd.Context(), msg); err != nil {
					errs = append(errs, fmt.Errorf("status webhook: %w", err))
				} else {
					fmt.Fprintln(out, "Test status message sent")
				}
			}
			if ntfy {
				if err := notifications.NewAlerter(cfg).Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
					errs = append(errs, fmt.Errorf("ntfy: %w", err))
				} else {
					fmt.Fprintln(out, "Test alert sent")
				}
			}
			return errors.Join(errs...)
		},
	}
}
