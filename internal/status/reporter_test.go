package status

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"podknight/internal/notifications"
	"podknight/internal/tasktree"
)

type call struct {
	op      string
	content string
}

type fakeNotifier struct {
	mu        sync.Mutex
	calls     []call
	failSends int
	delay     time.Duration
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (f *fakeNotifier) enter() {
	n := f.inFlight.Add(1)
	for {
		cur := f.maxFlight.Load()
		if n <= cur || f.maxFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
}

func (f *fakeNotifier) Send(_ context.Context, msg notifications.Message) (notifications.Handle, error) {
	f.enter()
	defer f.inFlight.Add(-1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "send", content: msg.Content})
	if f.failSends > 0 {
		f.failSends--
		return notifications.Handle{}, errors.New("send failed")
	}
	return notifications.Handle{ID: "m1"}, nil
}

func (f *fakeNotifier) Edit(_ context.Context, handle notifications.Handle, msg notifications.Message) error {
	f.enter()
	defer f.inFlight.Add(-1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if handle.ID != "m1" {
		return errors.New("unknown handle")
	}
	f.calls = append(f.calls, call{op: "edit", content: msg.Content})
	return nil
}

func (f *fakeNotifier) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type rc struct{}

// counterTree wraps work in a one-leaf sequential tree.
func counterTree(work func(ctx context.Context, task *tasktree.Task[rc]) error) *tasktree.Task[rc] {
	leaf := tasktree.Leaf("Encode", func(ctx context.Context, _ rc, task *tasktree.Task[rc]) error {
		return work(ctx, task)
	})
	return tasktree.Group("episode", tasktree.Sequential, []*tasktree.Task[rc]{leaf})
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunSendsExactlyOneFinalSnapshot(t *testing.T) {
	notifier := &fakeNotifier{}
	root := counterTree(func(context.Context, *tasktree.Task[rc]) error { return nil })
	reporter := &Reporter{Notifier: notifier, Interval: time.Hour, InitialDelay: time.Hour}

	err := reporter.Run(context.Background(), func() tasktree.Snapshot { return root.Snapshot(rc{}) },
		func(ctx context.Context) error { return root.Execute(ctx, rc{}) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	calls := notifier.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one snapshot, got %d", len(calls))
	}
	if calls[0].op != "send" || !strings.HasPrefix(calls[0].content, "✅ **episode**") {
		t.Fatalf("unexpected final snapshot: %+v", calls[0])
	}
}

func TestRunEditsSingleMessageAndStopsAfterTerminal(t *testing.T) {
	notifier := &fakeNotifier{}
	root := counterTree(func(_ context.Context, task *tasktree.Task[rc]) error {
		for i := 0; ; i++ {
			task.SetOutput("frame=" + strings.Repeat("1", i%50+1))
			if len(notifier.snapshot()) >= 3 {
				return errors.New("encoder exited with code 1")
			}
			time.Sleep(time.Millisecond)
		}
	})
	reporter := &Reporter{Notifier: notifier, Interval: 2 * time.Millisecond, InitialDelay: time.Millisecond}

	err := reporter.Run(context.Background(), func() tasktree.Snapshot { return root.Snapshot(rc{}) },
		func(ctx context.Context) error { return root.Execute(ctx, rc{}) })
	if err == nil || !strings.Contains(err.Error(), "code 1") {
		t.Fatalf("expected work error to propagate, got %v", err)
	}

	calls := notifier.snapshot()
	if calls[0].op != "send" {
		t.Fatalf("first delivery must be a send, got %s", calls[0].op)
	}
	for i, c := range calls[1:] {
		if c.op != "edit" {
			t.Fatalf("delivery %d = %s, want edit", i+1, c.op)
		}
	}
	last := calls[len(calls)-1]
	if !strings.HasPrefix(last.content, "❌ **episode**") || !strings.Contains(last.content, "❌ Encode") {
		t.Fatalf("final snapshot should show failure, got %q", last.content)
	}

	settled := len(calls)
	time.Sleep(20 * time.Millisecond)
	if after := len(notifier.snapshot()); after != settled {
		t.Fatalf("snapshots continued after terminal state: %d -> %d", settled, after)
	}
}

func TestRunSerializesDeliveries(t *testing.T) {
	notifier := &fakeNotifier{delay: 3 * time.Millisecond}
	release := make(chan struct{})
	root := counterTree(func(_ context.Context, task *tasktree.Task[rc]) error {
		i := 0
		for {
			select {
			case <-release:
				return nil
			default:
			}
			i++
			task.SetOutput(strings.Repeat("x", i%90+1))
			time.Sleep(500 * time.Microsecond)
		}
	})
	reporter := &Reporter{Notifier: notifier, Interval: time.Millisecond, InitialDelay: 0}

	done := make(chan error, 1)
	go func() {
		done <- reporter.Run(context.Background(), func() tasktree.Snapshot { return root.Snapshot(rc{}) },
			func(ctx context.Context) error { return root.Execute(ctx, rc{}) })
	}()
	waitUntil(t, func() bool { return len(notifier.snapshot()) >= 5 })
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := notifier.maxFlight.Load(); got != 1 {
		t.Fatalf("deliveries overlapped: max in flight = %d", got)
	}
}

func TestRunRecordsSendFailureAndRetries(t *testing.T) {
	notifier := &fakeNotifier{failSends: 1}
	errs := &notifications.ErrorLog{}
	release := make(chan struct{})
	root := counterTree(func(context.Context, *tasktree.Task[rc]) error {
		<-release
		return nil
	})
	reporter := &Reporter{Notifier: notifier, Interval: 2 * time.Millisecond, InitialDelay: 0, Errors: errs}

	done := make(chan error, 1)
	go func() {
		done <- reporter.Run(context.Background(), func() tasktree.Snapshot { return root.Snapshot(rc{}) },
			func(ctx context.Context) error { return root.Execute(ctx, rc{}) })
	}()
	waitUntil(t, func() bool { return len(notifier.snapshot()) >= 2 })
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Run should not fail on notification errors: %v", err)
	}

	calls := notifier.snapshot()
	if calls[0].op != "send" || calls[1].op != "send" {
		t.Fatalf("failed send should be retried as a send, got %+v", calls[:2])
	}
	if errs.Len() != 1 {
		t.Fatalf("expected one recorded failure, got %d", errs.Len())
	}
}

func TestRunWithNilNotifier(t *testing.T) {
	root := counterTree(func(context.Context, *tasktree.Task[rc]) error { return nil })
	reporter := &Reporter{InitialDelay: time.Hour}
	if err := reporter.Run(context.Background(), func() tasktree.Snapshot { return root.Snapshot(rc{}) },
		func(ctx context.Context) error { return root.Execute(ctx, rc{}) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
