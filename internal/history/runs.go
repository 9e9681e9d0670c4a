package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// StartRun inserts a running row for run. StartedAt defaults to now.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("start run: empty id")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, name, source, status, part_count, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Source, string(StatusRunning), run.PartCount, formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun marks the run terminal. A nil runErr records success.
func (s *Store) FinishRun(ctx context.Context, id string, runErr error, notificationErrors int) error {
	status := StatusCompleted
	var message sql.NullString
	if runErr != nil {
		status = StatusFailed
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, notification_errors = ?, finished_at = ? WHERE id = ?`,
		string(status), message, notificationErrors, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordOutput stores one published output.
func (s *Store) RecordOutput(ctx context.Context, out Output) error {
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO outputs (run_id, part_index, format, local_path, remote_location, size_bytes, sha256, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		out.RunID, out.PartIndex, out.Format, out.LocalPath, nullable(out.RemoteLocation),
		out.SizeBytes, nullable(out.SHA256), formatTime(out.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record output for run %s: %w", out.RunID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, status, part_count, error_message, notification_errors, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			status            string
			message           sql.NullString
			started, finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Name, &run.Source, &status, &run.PartCount,
			&message, &run.NotificationErrors, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = Status(status)
		run.ErrorMessage = message.String
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outputs returns the outputs recorded for runID in insertion order.
func (s *Store) Outputs(ctx context.Context, runID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, part_index, format, local_path, remote_location, size_bytes, sha256, created_at
		 FROM outputs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	var outputs []Output
	for rows.Next() {
		var (
			out         Output
			remote, sum sql.NullString
			created     sql.NullString
		)
		if err := rows.Scan(&out.RunID, &out.PartIndex, &out.Format, &out.LocalPath,
			&remote, &out.SizeBytes, &sum, &created); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		out.RemoteLocation = remote.String
		out.SHA256 = sum.String
		out.CreatedAt = parseTime(created)
		outputs = append(outputs, out)
	}
	return outputs, rows.Err()
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
