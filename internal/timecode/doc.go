// Package timecode converts between human timestamps ("01:02:03.250",
// "05:04", "90") and seconds.
//
// Parse accepts up to three colon-separated numeric fields where missing
// leading fields are absent rather than zero-width, so "05:04" is five
// minutes and four seconds. Format always renders the canonical zero-padded
// HH:MM:SS.mmm form with the millisecond field truncated, never rounded.
package timecode
