// Package execqueue bounds how many external encode processes run at once.
//
// A Gate admits callers in strict arrival order. Pools exposes one handle per
// media kind; when the audio pool size is zero both handles point at the
// same Gate so video and audio encodes share one capacity.
package execqueue
