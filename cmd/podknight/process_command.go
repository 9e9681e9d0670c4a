package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podknight/internal/config"
	"podknight/internal/episode"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "process SOURCE",
		Short: "Cut, encode and publish an episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, orch *episode.Orchestrator) error {
				req, err := flags.request(cfg, args[0])
				if err != nil {
					return err
				}
				run, err := orch.Prepare(cmd.Context(), req)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprint(out, run.Summary())
				fmt.Fprintf(out, "Upload: %s\n", yesNo(run.Request.Upload))
				if !assumeYes {
					ok, err := confirm(cmd.InOrStdin(), out, "Proceed?")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Aborted")
						return nil
					}
				}

				report, runErr := orch.Execute(cmd.Context(), run)
				fmt.Fprint(out, renderReport(report, runErr))
				return runErr
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Start without asking for confirmation")
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "plan SOURCE",
		Short: "Show the parts and outputs an episode would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			req, err := flags.request(cfg, args[0])
			if err != nil {
				return err
			}
			run, err := episode.New(cfg, episode.Deps{Logger: logger}).Prepare(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), run.Summary())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// confirm reads one answer line. End of input counts as no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Fprintln(out)
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func renderReport(report episode.Report, runErr error) string {
	var b strings.Builder

	if len(report.Outputs) > 0 {
		rows := make([][]string, 0, len(report.Outputs))
		for _, result := range report.Outputs {
			location := "-"
			if result.Uploaded {
				location = result.Location.String()
			}
			size := "-"
			if result.Encoded {
				size = formatBytes(result.Digest.Size)
			}
			rows = append(rows, []string{
				strconv.Itoa(result.Output.Part.Index + 1),
				result.Output.Format.Label(),
				result.Output.Path,
				size,
				location,
			})
		}
		b.WriteString(renderTable([]column{
			{Header: "Part", Align: alignRight},
			{Header: "Format"},
			{Header: "File", MaxWidth: 60},
			{Header: "Size", Align: alignRight},
			{Header: "Location", MaxWidth: 60},
		}, rows))
		b.WriteString("\n")
	}

	if runErr != nil {
		fmt.Fprintf(&b, "Run %s failed after %s\n", report.RunID, report.Duration.Round(time.Second))
		for _, path := range report.Failed {
			fmt.Fprintf(&b, "  failed: %s\n", path)
		}
	} else {
		fmt.Fprintf(&b, "Run %s finished in %s\n", report.RunID, report.Duration.Round(time.Second))
	}

	if report.NotificationErrors > 0 {
		fmt.Fprintf(&b, "%d status update(s) could not be delivered\n", report.NotificationErrors)
		for _, err := range report.FirstErrors {
			fmt.Fprintf(&b, "  %v\n", err)
		}
	}
	return b.String()
}

func formatBytes(size int64) string {
	const mib = 1024 * 1024
	if size < mib {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.1f MiB", float64(size)/mib)
}
