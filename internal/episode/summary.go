package episode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podknight/internal/logging"
	"podknight/internal/notifications"
	"podknight/internal/status"
)

const (
	colorSuccess = 0x2ecc71
	colorFailure = 0xe74c3c
	// maxSummaryFields keeps the embed under the webhook field limit.
	maxSummaryFields = 24
)

// SummaryMessage renders the run-end embed.
func SummaryMessage(report Report, runErr error, notificationErrors int) notifications.Message {
	embed := notifications.Embed{
		Title: fmt.Sprintf("%s %s", status.OverallIcon(report.Final.State), report.Name),
		Color: colorSuccess,
	}
	var desc strings.Builder
	fmt.Fprintf(&desc, "%d output(s) in %s", len(report.Outputs), report.Duration.Round(time.Second))
	if runErr != nil {
		embed.Color = colorFailure
		fmt.Fprintf(&desc, "\nFailed: %s", status.Excerpt(runErr.Error(), status.ExcerptChars))
		for _, path := range report.Failed {
			fmt.Fprintf(&desc, "\n- %s", path)
		}
	}
	if notificationErrors > 0 {
		fmt.Fprintf(&desc, "\n%d status update(s) failed", notificationErrors)
	}
	embed.Description = desc.String()

	for _, res := range report.Outputs {
		if len(embed.Fields) == maxSummaryFields {
			break
		}
		value := fmt.Sprintf("%.1f MiB", float64(res.Digest.Size)/(1<<20))
		if res.Uploaded {
			value += "\n" + res.Location.String()
		}
		embed.Fields = append(embed.Fields, notifications.EmbedField{Name: res.Output.Name, Value: value})
	}
	return notifications.Message{Embeds: []notifications.Embed{embed}}
}

func (o *Orchestrator) sendSummary(ctx context.Context, logger *slog.Logger, report Report, runErr error, errs *notifications.ErrorLog) {
	msg := SummaryMessage(report, runErr, errs.Len())
	if _, err := o.notifier.Send(ctx, msg); err != nil {
		errs.Record(err)
		logger.Debug("summary send failed", logging.Error(err))
	}
}
