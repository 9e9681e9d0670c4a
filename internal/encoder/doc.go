// Package encoder runs the external encode process for one Part and Format.
//
// BuildArgs assembles the ffmpeg argument vector, Runner launches it, streams
// its diagnostic output line by line (collapsing rolling "frame=" progress
// lines into one), and maps the exit status onto EncodeError or
// EnvironmentError. The runner never retries and never kills a process it
// has started; retry and timeout policy belong to the caller.
package encoder
