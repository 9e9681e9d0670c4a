package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podknight/internal/config"
	"podknight/internal/encoder"
)

// sampleOutputBase names example outputs in `config validate`.
const sampleOutputBase = "episode_1"

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the podknight configuration",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if err := writeSampleConfig(target, overwrite); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Fill in [storage] and [notifications], or export AWS_ACCESS_KEY_ID and PODKNIGHT_DISCORD_WEBHOOK, then run `podknight check`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the configuration (default: the user config path)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func configTarget(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return "", fmt.Errorf("resolve --path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("default config path: %w", err)
	}
	return path, nil
}

func writeSampleConfig(target string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	if !overwrite {
		_, err := os.Stat(target)
		switch {
		case err == nil:
			return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("inspect %s: %w", target, err)
		}
	}
	if err := config.CreateSample(target); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and show what a run would use",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			flagPath, _ := cmd.Flags().GetString("config")
			cfg, resolved, exists, err := config.Load(strings.TrimSpace(flagPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			formats, err := encoder.FormatsFromConfig(cfg.Formats)
			if err != nil {
				return fmt.Errorf("[[formats]]: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}
			printConfigReport(cmd.OutOrStdout(), cfg, resolved, exists, formats)
			return nil
		},
	}
}

func printConfigReport(out io.Writer, cfg *config.Config, resolved string, exists bool, formats []encoder.Format) {
	source := resolved
	if !exists {
		source += " (not found, built-in defaults)"
	}
	fmt.Fprintf(out, "Config path: %s\n", source)

	labels := make([]string, 0, len(formats))
	rows := make([][]string, 0, len(formats))
	for _, f := range formats {
		labels = append(labels, f.Label())
		rows = append(rows, []string{
			f.Label(),
			f.OutputName(sampleOutputBase),
			fmt.Sprintf("%d", len(f.Encoding)),
		})
	}
	fmt.Fprintf(out, "Formats: %s\n", strings.Join(labels, ", "))
	fmt.Fprintln(out, renderTable([]column{
		{Header: "Format"},
		{Header: "Example output"},
		{Header: "Encoder args", Align: alignRight},
	}, rows))

	uploads := yesNo(cfg.Storage.Enabled)
	if cfg.Storage.Enabled {
		uploads += fmt.Sprintf(" (s3://%s/%s)", cfg.Storage.Bucket, strings.Trim(cfg.Storage.Prefix, "/"))
	}
	fmt.Fprintf(out, "Uploads: %s\n", uploads)
	fmt.Fprintf(out, "Scratch: %s\n", cfg.Paths.WorkDir)
	fmt.Fprintln(out, "Configuration valid")
}
