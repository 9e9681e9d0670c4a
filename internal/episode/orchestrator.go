package episode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"podknight/internal/config"
	"podknight/internal/execqueue"
	"podknight/internal/history"
	"podknight/internal/logging"
	"podknight/internal/notifications"
	"podknight/internal/services"
	"podknight/internal/status"
	"podknight/internal/storage"
	"podknight/internal/tasktree"
)

// LockFileName is held in the output directory while a run writes to it.
const LockFileName = ".podknight.lock"

// reportedErrors is how many notification failures the report lists.
const reportedErrors = 3

// Deps are the collaborators of an Orchestrator. Nil fields disable the
// matching feature.
type Deps struct {
	Store    storage.Store
	Notifier notifications.Notifier
	Alerter  notifications.Alerter
	History  *history.Store
	Logger   *slog.Logger
}

// Orchestrator prepares and executes runs.
type Orchestrator struct {
	cfg      *config.Config
	store    storage.Store
	notifier notifications.Notifier
	alerter  notifications.Alerter
	history  *history.Store
	logger   *slog.Logger

	// base is the caller's logger, before the component field.
	base *slog.Logger
}

// New builds an orchestrator for cfg.
func New(cfg *config.Config, deps Deps) *Orchestrator {
	alerter := deps.Alerter
	if alerter == nil {
		alerter = notifications.NewAlerter(nil)
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    deps.Store,
		notifier: notifications.OrNoop(deps.Notifier),
		alerter:  alerter,
		history:  deps.History,
		logger:   logging.NewComponentLogger(deps.Logger, "episode"),
		base:     deps.Logger,
	}
}

// Report summarizes an executed run.
type Report struct {
	RunID              string
	Name               string
	Outputs            []OutputResult
	Final              tasktree.Snapshot
	Failed             []string
	NotificationErrors int
	FirstErrors        []error
	Duration           time.Duration
}

// Execute runs a prepared run to completion. The returned Report is valid
// even when the run fails.
func (o *Orchestrator) Execute(ctx context.Context, run *Run) (Report, error) {
	ctx = services.WithRunID(ctx, run.ID)
	logger := logging.WithContext(ctx, o.logger)
	report := Report{RunID: run.ID, Name: run.Name()}

	outputDir := run.Request.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return report, services.Wrap(services.ErrEnvironment, "execute", "output dir", "output directory could not be created", err)
	}
	lock := flock.New(filepath.Join(outputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrEnvironment, "execute", "lock", "output directory lock failed", err)
	}
	if !locked {
		return report, services.Wrap(services.ErrEnvironment, "execute", "lock",
			fmt.Sprintf("another run is writing to %s", outputDir), nil)
	}
	defer func() { _ = lock.Unlock() }()

	scratch := filepath.Join(o.cfg.Paths.WorkDir, run.ID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return report, services.Wrap(services.ErrEnvironment, "execute", "scratch", "scratch directory could not be created", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	rc := &RunContext{
		Run:        run,
		Upload:     run.Request.Upload,
		ScratchDir: scratch,
		pools:      o.pools(run.Request.Limits),
		results:    newResults(),
	}
	root := o.buildTree(run)

	started := time.Now()
	if o.history != nil {
		if err := o.history.StartRun(ctx, history.Run{
			ID:        run.ID,
			Name:      run.Name(),
			Source:    run.Request.Source,
			PartCount: len(run.Plan.Parts),
			StartedAt: started,
		}); err != nil {
			logging.WarnWithContext(logger, "history unavailable for run", "history_start_failed",
				logging.String(logging.FieldErrorHint, "check the log directory is writable"),
				logging.String(logging.FieldImpact, "this run will not appear in podknight history"),
				logging.Error(err),
			)
		}
	}
	o.publish(ctx, logger, notifications.EventRunStarted, notifications.Payload{
		"name":    run.Name(),
		"parts":   len(run.Plan.Parts),
		"formats": len(run.Request.Formats),
	})

	errs := &notifications.ErrorLog{}
	reporter := &status.Reporter{
		Notifier:     o.notifier,
		Interval:     o.cfg.Notifications.Interval(),
		InitialDelay: o.cfg.Notifications.InitialDelay(),
		MaxChars:     o.cfg.Notifications.StatusMaxChars,
		Errors:       errs,
		Logger:       o.logger,
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("outputs", len(run.Outputs)),
		logging.Bool("upload", rc.Upload),
		logging.Bool("shared_pool", rc.pools.Shared()),
	)
	runErr := reporter.Run(ctx,
		func() tasktree.Snapshot { return root.Snapshot(rc) },
		func(ctx context.Context) error { return root.Execute(ctx, rc) },
	)

	report.Duration = time.Since(started)
	report.Outputs = rc.results.list()
	report.Final = root.Snapshot(rc)
	report.Failed = report.Final.FailedPaths()

	finalCtx := context.WithoutCancel(ctx)
	o.sendSummary(finalCtx, logger, report, runErr, errs)
	report.NotificationErrors = errs.Len()
	report.FirstErrors = errs.First(reportedErrors)

	if o.history != nil {
		if err := o.history.FinishRun(finalCtx, run.ID, runErr, report.NotificationErrors); err != nil {
			logger.Debug("history finish failed", logging.Error(err))
		}
	}

	if runErr != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.String(logging.FieldErrorHint, "see the failed task in the status message or run with --log-level debug"),
			logging.String("kind", services.Kind(runErr)),
			logging.Error(runErr),
		)
		return report, runErr
	}

	o.publish(finalCtx, logger, notifications.EventRunCompleted, notifications.Payload{
		"name":                run.Name(),
		"outputs":             len(report.Outputs),
		"duration":            report.Duration,
		"notification_errors": report.NotificationErrors,
	})
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("duration", report.Duration),
		logging.Int("notification_errors", report.NotificationErrors),
	)
	return report, nil
}

func (o *Orchestrator) pools(limits *Limits) execqueue.Pools {
	if limits != nil {
		return execqueue.NewPools(limits.Video, limits.Audio)
	}
	return execqueue.NewPools(o.cfg.Encoder.VideoConcurrency, o.cfg.Encoder.AudioConcurrency)
}

// publishFailure is the root rollback: it runs once, after every started
// task settled.
func (o *Orchestrator) publishFailure(ctx context.Context, rc *RunContext, snap tasktree.Snapshot, err error) {
	logger := logging.WithContext(services.WithRunID(ctx, rc.Run.ID), o.logger)
	stage := ""
	if failed := snap.FailedPaths(); len(failed) > 0 {
		stage = failed[0]
	}
	o.publish(ctx, logger, notifications.EventRunFailed, notifications.Payload{
		"name":  rc.Run.Name(),
		"stage": stage,
		"error": err.Error(),
	})
}

func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := o.alerter.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "alert failed", "alert_failed",
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}
