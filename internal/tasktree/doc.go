// Package tasktree models a run as a tree of tasks.
//
// Leaves do work; groups run their children either one after another
// (Sequential) or all at once (Concurrent). Every task carries an optional
// enable predicate evaluated against the run context at the moment it would
// be scheduled, and an optional rollback hook that fires once when anything
// beneath it fails.
//
// A group's observed state is derived from its children on every read. All
// nodes of one tree share a single lock, so State and Snapshot always see a
// consistent picture even while concurrent children are finishing.
//
// Trees are single use: build one per run with Leaf and Group, call Execute
// on the root once, and discard it.
package tasktree
