// Package episode runs one recording through the full pipeline: probe the
// source, plan its parts, then execute a task tree that checks the
// environment, encodes every part in every format behind the execution
// queue, uploads the results and records the run.
//
// Prepare does everything that can fail before work starts and returns a
// Run for operator review. Execute runs it while the status reporter keeps
// a single notification message up to date.
package episode
