package encoder

import (
	"fmt"
	"strings"

	"podknight/internal/services"
)

// EncodeError reports a non-zero exit from the encoder.
type EncodeError struct {
	ExitCode int
	Tail     string
}

func (e *EncodeError) Error() string {
	last := lastLine(e.Tail)
	if last == "" {
		return fmt.Sprintf("encoder exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("encoder exited with code %d: %s", e.ExitCode, last)
}

// Is lets callers classify the error with errors.Is(err, services.ErrEncode).
func (e *EncodeError) Is(target error) bool {
	return target == services.ErrEncode
}

// EnvironmentError reports that the encoder could not be launched.
type EnvironmentError struct {
	Binary string
	Err    error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Binary, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// Is lets callers classify the error with errors.Is(err, services.ErrEnvironment).
func (e *EnvironmentError) Is(target error) bool {
	return target == services.ErrEnvironment
}

func lastLine(text string) string {
	text = strings.TrimRight(text, "\n")
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return strings.TrimSpace(text)
}
