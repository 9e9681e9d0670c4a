package encoder

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"podknight/internal/logging"
)

// Result is the outcome of a successful or failed encoder run.
type Result struct {
	ExitCode int
	lines    []string
}

// Tail returns the retained diagnostic text, oldest first.
func (r Result) Tail() string {
	return strings.Join(r.lines, "\n")
}

// Last returns the most recent retained line.
func (r Result) Last() string {
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

// Runner launches the encoder binary.
type Runner struct {
	Binary       string
	Dir          string
	HistoryLimit int
	Logger       *slog.Logger
}

// NewRunner returns a runner for binary (default "ffmpeg").
func NewRunner(binary, dir string, logger *slog.Logger) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{Binary: binary, Dir: dir, Logger: logging.NewComponentLogger(logger, "encoder")}
}

// Run executes the encoder with args and blocks until it exits. onProgress,
// when set, receives every logical output line after progress collapsing.
// The context is only consulted before launch; a started process always runs
// to completion.
func (r *Runner) Run(ctx context.Context, args []string, onProgress func(string)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	cmd := exec.Command(r.Binary, args...)
	cmd.Dir = r.Dir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	logger.Debug("launching encoder",
		logging.String("binary", r.Binary),
		logging.String("args", strings.Join(args, " ")),
	)
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return Result{}, &EnvironmentError{Binary: r.Binary, Err: err}
	}

	hist := newHistory(r.HistoryLimit)
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanLogical)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			hist.add(line)
			if onProgress != nil {
				onProgress(hist.last())
			}
		}
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
	}()

	waitErr := cmd.Wait()
	_ = pw.Close()
	<-done

	result := Result{lines: hist.lines}
	if waitErr == nil {
		logger.Debug("encoder finished", logging.String("binary", r.Binary))
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &EncodeError{ExitCode: result.ExitCode, Tail: result.Tail()}
	}
	return result, &EnvironmentError{Binary: r.Binary, Err: waitErr}
}
