package tasktree

// Snapshot is a point-in-time copy of a subtree.
type Snapshot struct {
	Title    string
	State    State
	Output   string
	Children []Snapshot
}

// Snapshot copies the subtree under one read lock. Pending tasks whose
// predicate is currently false are reported as Skipped.
func (t *Task[C]) Snapshot(rc C) Snapshot {
	lock := t.locker()
	lock.RLock()
	defer lock.RUnlock()
	return t.snapshotLocked(rc)
}

func (t *Task[C]) snapshotLocked(rc C) Snapshot {
	state := t.stateLocked()
	if state == Pending && !t.started && t.Enabled != nil && !t.Enabled(rc) {
		state = Skipped
	}
	snap := Snapshot{Title: t.Title, State: state, Output: t.output}
	if state == Skipped {
		return snap
	}
	for _, child := range t.Children {
		snap.Children = append(snap.Children, child.snapshotLocked(rc))
	}
	return snap
}

// Walk visits s and every descendant depth first, passing the depth (root 0).
func (s Snapshot) Walk(fn func(depth int, node Snapshot)) {
	s.walk(0, fn)
}

func (s Snapshot) walk(depth int, fn func(int, Snapshot)) {
	fn(depth, s)
	for _, child := range s.Children {
		child.walk(depth+1, fn)
	}
}

// Count returns how many nodes in the snapshot are in state.
func (s Snapshot) Count(state State) int {
	n := 0
	s.Walk(func(_ int, node Snapshot) {
		if node.State == state {
			n++
		}
	})
	return n
}

// FailedPaths lists every failed leaf as a " / " joined title path below s.
func (s Snapshot) FailedPaths() []string {
	var paths []string
	var visit func(prefix string, node Snapshot)
	visit = func(prefix string, node Snapshot) {
		path := node.Title
		if prefix != "" {
			path = prefix + " / " + node.Title
		}
		if node.State == Failed && len(node.Children) == 0 {
			paths = append(paths, path)
			return
		}
		for _, child := range node.Children {
			visit(path, child)
		}
	}
	for _, child := range s.Children {
		visit("", child)
	}
	return paths
}
