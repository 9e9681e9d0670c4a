package encoder

import (
	"bytes"
	"regexp"
	"strings"

	"podknight/internal/timecode"
)

// DefaultHistoryLimit caps retained diagnostic lines per run.
const DefaultHistoryLimit = 100

var progressPrefixes = []string{"frame=", "size="}

var progressTime = regexp.MustCompile(`time=\s*(\d+:\d{2}:\d{2}(?:\.\d+)?)`)

// IsProgressLine reports whether line is a rolling encoder progress line.
func IsProgressLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range progressPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// ParseProgress extracts the encoded position from a progress line and
// returns it as a percentage of total seconds.
func ParseProgress(line string, total float64) (float64, bool) {
	match := progressTime.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	pos, err := timecode.Parse(match[1])
	if err != nil {
		return 0, false
	}
	if total <= 0 {
		return 0, false
	}
	percent := pos / total * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true
}

// history keeps the last limit logical lines, merging consecutive progress
// lines so only the newest survives.
type history struct {
	limit int
	lines []string
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit}
}

func (h *history) add(line string) {
	if n := len(h.lines); n > 0 && IsProgressLine(line) && IsProgressLine(h.lines[n-1]) {
		h.lines[n-1] = line
		return
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = append(h.lines[:0:0], h.lines[over:]...)
	}
}

func (h *history) last() string {
	if len(h.lines) == 0 {
		return ""
	}
	return h.lines[len(h.lines)-1]
}

// scanLogical splits on either carriage return or newline so ffmpeg's
// in-place progress updates arrive as separate tokens.
func scanLogical(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
