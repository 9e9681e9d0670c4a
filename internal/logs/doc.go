// Package logs reads the podknight log file for the CLI.
//
// Last returns the final lines with bounded memory, and Follow polls for
// appended lines until its context ends, starting over when the file is
// truncated or rotated underneath it.
package logs
