// Package ffprobe runs ffprobe against a recording and decodes the parts of
// its JSON report the planner needs: container duration and which stream
// kinds exist.
package ffprobe
