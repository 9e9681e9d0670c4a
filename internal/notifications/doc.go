// Package notifications delivers run status and alerts.
//
// Two channels are supported. A Notifier posts a structured message to a
// Discord-compatible webhook and edits it in place as the run progresses;
// the status reporter and the final summary use it. An Alerter publishes
// one-shot ntfy pushes for run start, completion, and failure. Both degrade
// to no-ops when unconfigured, and callers treat a nil Notifier the same way.
//
// ErrorLog collects notification failures for a run so they can be reported
// at the end without interrupting the work.
package notifications
