package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"podknight/internal/services"
)

const maxFields = 3

// FormatError reports timestamp text that cannot be parsed.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timestamp %q: %s", e.Input, e.Reason)
}

// Is lets callers classify the error with errors.Is(err, services.ErrFormat).
func (e *FormatError) Is(target error) bool {
	return target == services.ErrFormat
}

// Parse converts "hh:mm:ss.frac", "mm:ss" or "ss" into seconds.
func Parse(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, &FormatError{Input: text, Reason: "empty value"}
	}
	fields := strings.Split(trimmed, ":")
	if len(fields) > maxFields {
		return 0, &FormatError{Input: text, Reason: fmt.Sprintf("expected at most %d components, got %d", maxFields, len(fields))}
	}

	var total float64
	for i, field := range fields {
		value, err := parseField(field, i == len(fields)-1)
		if err != nil {
			return 0, &FormatError{Input: text, Reason: err.Error()}
		}
		total = total*60 + value
	}
	return total, nil
}

func parseField(field string, last bool) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, fmt.Errorf("empty component")
	}
	dots := 0
	for _, r := range field {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
		default:
			return 0, fmt.Errorf("component %q is not numeric", field)
		}
	}
	if dots > 1 || (dots == 1 && !last) {
		return 0, fmt.Errorf("component %q is not numeric", field)
	}
	value, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsInf(value, 0) {
		return 0, fmt.Errorf("component %q is not numeric", field)
	}
	return value, nil
}

// Format renders seconds as HH:MM:SS.mmm. Negative values render as their
// magnitude; hours do not wrap.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	seconds = math.Abs(seconds)
	// The epsilon absorbs binary representation error (1.001*1000 ==
	// 1000.9999...) without turning truncation into rounding.
	totalMillis := int64(math.Floor(seconds*1000 + 1e-6))

	ms := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	s := totalSeconds % 60
	m := (totalSeconds / 60) % 60
	h := totalSeconds / 3600
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
