package tasktree

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyExecuted is returned when Execute is called twice on one task.
var ErrAlreadyExecuted = errors.New("task tree already executed")

// RunFunc performs a leaf's work. The task is passed so the function can
// publish progress through SetOutput.
type RunFunc[C any] func(ctx context.Context, rc C, task *Task[C]) error

// Predicate decides whether a task takes part in the run.
type Predicate[C any] func(rc C) bool

// RollbackFunc reacts to a failure somewhere beneath the task that owns it.
type RollbackFunc[C any] func(ctx context.Context, rc C, err error)

// Option configures a task at construction.
type Option[C any] func(*Task[C])

// WithEnabled sets the enable predicate.
func WithEnabled[C any](p Predicate[C]) Option[C] {
	return func(t *Task[C]) { t.Enabled = p }
}

// WithRollback sets the rollback hook.
func WithRollback[C any](fn RollbackFunc[C]) Option[C] {
	return func(t *Task[C]) { t.Rollback = fn }
}

// Task is one node of the tree. The exported fields are configuration and
// must not change once Execute has been called.
type Task[C any] struct {
	Title    string
	Enabled  Predicate[C]
	Run      RunFunc[C]
	Children []*Task[C]
	Mode     Mode
	Rollback RollbackFunc[C]

	lock *sync.RWMutex

	// guarded by lock
	state    State
	started  bool
	finished bool
	skipped  bool
	output   string
	err      error
}

// Leaf builds a task that runs fn.
func Leaf[C any](title string, fn RunFunc[C], opts ...Option[C]) *Task[C] {
	t := &Task[C]{Title: title, Run: fn, lock: new(sync.RWMutex)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Group builds a task whose work is its children.
func Group[C any](title string, mode Mode, children []*Task[C], opts ...Option[C]) *Task[C] {
	t := &Task[C]{Title: title, Mode: mode, lock: new(sync.RWMutex)}
	for _, opt := range opts {
		opt(t)
	}
	t.Add(children...)
	return t
}

// Add appends children and joins them to this task's lock.
func (t *Task[C]) Add(children ...*Task[C]) {
	for _, child := range children {
		if child == nil {
			continue
		}
		t.Children = append(t.Children, child)
	}
	t.adopt(t.locker())
}

func (t *Task[C]) locker() *sync.RWMutex {
	if t.lock == nil {
		t.lock = new(sync.RWMutex)
	}
	return t.lock
}

func (t *Task[C]) adopt(lock *sync.RWMutex) {
	t.lock = lock
	for _, child := range t.Children {
		child.adopt(lock)
	}
}

// IsGroup reports whether the task has children.
func (t *Task[C]) IsGroup() bool {
	return len(t.Children) > 0
}

// State returns the task's current state; for groups it is derived from the
// children.
func (t *Task[C]) State() State {
	lock := t.locker()
	lock.RLock()
	defer lock.RUnlock()
	return t.stateLocked()
}

func (t *Task[C]) stateLocked() State {
	if t.skipped {
		return Skipped
	}
	if !t.IsGroup() {
		return t.state
	}

	anyStarted := false
	anyFailed := false
	allCompleted := true
	for _, child := range t.Children {
		switch child.stateLocked() {
		case Running:
			return Running
		case Failed:
			anyFailed = true
			anyStarted = true
		case Completed:
			anyStarted = true
		case Skipped:
		case Pending:
			allCompleted = false
		}
	}
	if t.started && !t.finished {
		return Running
	}
	if anyFailed {
		return Failed
	}
	if allCompleted {
		if !t.finished && !anyStarted {
			// Every child was hidden by its predicate before the group ran.
			return Pending
		}
		return Completed
	}
	if anyStarted {
		return Running
	}
	return Pending
}

// Output returns the latest progress text.
func (t *Task[C]) Output() string {
	lock := t.locker()
	lock.RLock()
	defer lock.RUnlock()
	return t.output
}

// SetOutput replaces the progress text.
func (t *Task[C]) SetOutput(text string) {
	lock := t.locker()
	lock.Lock()
	t.output = text
	lock.Unlock()
}

// Err returns the error a leaf failed with.
func (t *Task[C]) Err() error {
	lock := t.locker()
	lock.RLock()
	defer lock.RUnlock()
	return t.err
}
