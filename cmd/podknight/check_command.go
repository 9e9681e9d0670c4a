package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podknight/internal/config"
	"podknight/internal/deps"
	"podknight/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify encoders, directories, disk space and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.objectStore(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Encoders", colorize)...)
			lines = append(lines, dependencyLines(cmd.Context(), deps.CheckBinaries(deps.EncoderRequirements(cfg.Encoder)), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checklist", colorize)...)
			results := preflight.RunAll(cmd.Context(), cfg, store)
			lines = append(lines, checklistLines(results, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Notifications", colorize)...)
			lines = append(lines, notificationLines(cfg, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}

func dependencyLines(ctx context.Context, statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, status := range statuses {
		if !status.Available {
			detail := strings.TrimSpace(status.Detail)
			if detail == "" {
				detail = "not available"
			}
			lines = append(lines, renderStatusLine(status.Name, statusError, detail, colorize))
			missing = append(missing, status.Name)
			continue
		}
		message := fmt.Sprintf("Ready (command: %s)", status.Command)
		if version, err := deps.Version(ctx, status.Command); err == nil && version != "" {
			message = fmt.Sprintf("%s, %s", message, version)
		}
		lines = append(lines, renderStatusLine(status.Name, statusOK, message, colorize))
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func checklistLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}

func notificationLines(cfg *config.Config, colorize bool) []string {
	line := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			return renderStatusLine(label, statusWarn, "not configured", colorize)
		}
		return renderStatusLine(label, statusInfo, "configured", colorize)
	}
	return []string{
		line("Status webhook", cfg.Notifications.DiscordWebhook),
		line("ntfy topic", cfg.Notifications.NtfyTopic),
	}
}
