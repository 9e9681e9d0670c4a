// Package cutplan turns an ordered list of cut points into the Parts of an
// episode.
//
// A cut point is either a timestamp or the skip marker. Skips discard the
// interval that ends at the next real cut; disabled part specs consume their
// boundary without emitting a Part. Plan validates every emitted interval and
// renders an operator-facing summary before any encoding starts.
package cutplan
