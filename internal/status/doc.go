// Package status streams a live view of a task tree to a notifier.
//
// Reporter.Run wraps the work function: shortly after start and then on a
// fixed interval it renders the tree and delivers it, creating one message
// and editing it afterwards. Deliveries happen on a single goroutine so they
// never overlap or reorder. Failed deliveries are recorded in the run's
// ErrorLog and reporting carries on. When the work returns, the ticker stops
// and exactly one final snapshot is sent.
package status
