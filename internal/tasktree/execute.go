package tasktree

import (
	"context"
	"errors"
	"sync"
)

// handledError marks a failure whose rollback already ran so enclosing
// tasks do not fire theirs for the same cause.
type handledError struct {
	err error
}

func (e *handledError) Error() string { return e.err.Error() }
func (e *handledError) Unwrap() error { return e.err }

func needsRollback(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if needsRollback(e) {
				return true
			}
		}
		return false
	}
	var handled *handledError
	return !errors.As(err, &handled)
}

// Execute runs the task and everything beneath it, blocking until the whole
// subtree has settled. It returns the first failure of a Sequential group or
// the joined failures of a Concurrent one.
func (t *Task[C]) Execute(ctx context.Context, rc C) error {
	t.locker()
	return t.execute(ctx, rc)
}

func (t *Task[C]) execute(ctx context.Context, rc C) error {
	run, err := t.schedule(rc)
	if !run {
		return err
	}

	if t.IsGroup() {
		if t.Mode == Concurrent {
			err = t.runConcurrent(ctx, rc)
		} else {
			err = t.runSequential(ctx, rc)
		}
		t.lock.Lock()
		t.finished = true
		t.lock.Unlock()
	} else {
		err = t.runLeaf(ctx, rc)
	}

	if err != nil && t.Rollback != nil && needsRollback(err) {
		t.Rollback(context.WithoutCancel(ctx), rc, err)
		return &handledError{err: err}
	}
	return err
}

// schedule evaluates the predicate and moves the task out of Pending.
func (t *Task[C]) schedule(rc C) (bool, error) {
	enabled := t.Enabled == nil || t.Enabled(rc)
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.started || t.skipped {
		return false, ErrAlreadyExecuted
	}
	if !enabled {
		t.skipped = true
		return false, nil
	}
	t.started = true
	if !t.IsGroup() {
		t.state = Running
	}
	return true, nil
}

func (t *Task[C]) runLeaf(ctx context.Context, rc C) error {
	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else if t.Run != nil {
		err = t.Run(ctx, rc, t)
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	if err != nil {
		t.state = Failed
		t.err = err
		return err
	}
	t.state = Completed
	return nil
}

func (t *Task[C]) runSequential(ctx context.Context, rc C) error {
	for _, child := range t.Children {
		if err := child.execute(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}

func (t *Task[C]) runConcurrent(ctx context.Context, rc C) error {
	errs := make([]error, len(t.Children))
	var wg sync.WaitGroup
	for i, child := range t.Children {
		wg.Add(1)
		go func(i int, child *Task[C]) {
			defer wg.Done()
			errs[i] = child.execute(ctx, rc)
		}(i, child)
	}
	wg.Wait()
	return errors.Join(errs...)
}
