package status

import (
	"context"
	"log/slog"
	"time"

	"podknight/internal/logging"
	"podknight/internal/notifications"
	"podknight/internal/tasktree"
)

const (
	DefaultInterval     = 15 * time.Second
	DefaultInitialDelay = 2 * time.Second
)

// Reporter periodically pushes snapshots of a running tree.
type Reporter struct {
	Notifier     notifications.Notifier
	Interval     time.Duration
	InitialDelay time.Duration
	MaxChars     int
	Errors       *notifications.ErrorLog
	Logger       *slog.Logger
}

// delivery is owned by the reporting goroutine, then by the final send.
type delivery struct {
	handle notifications.Handle
	last   string
}

// Run executes fn while reporting source on a timer, then sends one final
// snapshot and returns fn's error.
func (r *Reporter) Run(ctx context.Context, source func() tasktree.Snapshot, fn func(context.Context) error) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	initial := r.InitialDelay
	if initial < 0 {
		initial = 0
	}

	var d delivery
	stop := make(chan struct{})
	loopDone := make(chan struct{})

	go func() {
		defer close(loopDone)
		timer := time.NewTimer(initial)
		defer timer.Stop()
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		r.push(ctx, &d, source(), false)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.push(ctx, &d, source(), false)
			}
		}
	}()

	err := fn(ctx)
	close(stop)
	<-loopDone

	r.push(context.WithoutCancel(ctx), &d, source(), true)
	return err
}

func (r *Reporter) push(ctx context.Context, d *delivery, snap tasktree.Snapshot, final bool) {
	content := Render(snap, r.MaxChars)
	if !final && d.handle.Valid() && content == d.last {
		return
	}
	notifier := notifications.OrNoop(r.Notifier)
	msg := notifications.Text(content)

	if !d.handle.Valid() {
		handle, err := notifier.Send(ctx, msg)
		if err != nil {
			r.fail("status send failed; retrying on next tick", "status_send_failed", err)
			return
		}
		d.handle = handle
		d.last = content
		return
	}
	if err := notifier.Edit(ctx, d.handle, msg); err != nil {
		r.fail("status edit failed; retrying on next tick", "status_edit_failed", err)
		return
	}
	d.last = content
}

func (r *Reporter) fail(msg, eventType string, err error) {
	r.Errors.Record(err)
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logging.WarnWithContext(logger, msg, eventType,
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.discord_webhook and network reachability"),
		logging.String(logging.FieldImpact, "status channel may lag behind the run"),
	)
}
