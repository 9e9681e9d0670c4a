package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"podknight/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to show")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "-"
		if d := run.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		detail := run.ErrorMessage
		if run.NotificationErrors > 0 {
			if detail != "" {
				detail += "; "
			}
			detail += fmt.Sprintf("%d status update(s) failed", run.NotificationErrors)
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Name,
			string(run.Status),
			strconv.Itoa(run.PartCount),
			duration,
			detail,
		})
	}
	return renderTable([]column{
		{Header: "Started"},
		{Header: "Name"},
		{Header: "Status"},
		{Header: "Parts", Align: alignRight},
		{Header: "Duration", Align: alignRight},
		{Header: "Detail", MaxWidth: 50},
	}, rows)
}
