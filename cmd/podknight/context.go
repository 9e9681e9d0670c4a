package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"podknight/internal/config"
	"podknight/internal/episode"
	"podknight/internal/history"
	"podknight/internal/logging"
	"podknight/internal/notifications"
	"podknight/internal/storage"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureLogger builds the process logger and prunes expired log files the
// first time a command needs it.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneLogs(logger, cfg.Paths.LogDir, "*.log", cfg.Logging.RetentionDays,
			filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// objectStore returns nil when uploads are disabled.
func (c *commandContext) objectStore(cfg *config.Config) (storage.Store, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	store, err := storage.NewS3(cfg.Storage)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// withOrchestrator wires an orchestrator with every configured collaborator
// and closes the history database when fn returns.
func (c *commandContext) withOrchestrator(fn func(*config.Config, *episode.Orchestrator) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := c.objectStore(cfg)
	if err != nil {
		return err
	}
	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	orch := episode.New(cfg, episode.Deps{
		Store:    store,
		Notifier: notifications.NewNotifier(cfg),
		Alerter:  notifications.NewAlerter(cfg),
		History:  hist,
		Logger:   logger,
	})
	return fn(cfg, orch)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
