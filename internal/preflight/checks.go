package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"podknight/internal/config"
	"podknight/internal/deps"
	"podknight/internal/services"
	"podknight/internal/storage"
)

const remoteSampleSize = 3

// CheckEncoderBinaries verifies that ffmpeg and ffprobe resolve.
func CheckEncoderBinaries(cfg config.Encoder) Result {
	const name = "Encoder binaries"
	statuses := deps.CheckBinaries(deps.EncoderRequirements(cfg))
	missing := deps.Missing(statuses)
	if len(missing) > 0 {
		details := make([]string, 0, len(missing))
		for _, s := range missing {
			details = append(details, fmt.Sprintf("%s: %s", s.Name, s.Detail))
		}
		return Result{Name: name, Detail: strings.Join(details, "; "), marker: services.ErrEnvironment}
	}
	commands := make([]string, 0, len(statuses))
	for _, s := range statuses {
		commands = append(commands, s.Command)
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(commands, ", ")}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	fail := func(detail string) Result {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", path, detail), marker: services.ErrEnvironment}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("does not exist")
		}
		return fail(fmt.Sprintf("stat: %v", err))
	}
	if !info.IsDir() {
		return fail("is not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(fmt.Sprintf("insufficient permissions: %v", err))
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minGiB available. A path that does not exist yet is measured at its
// nearest existing parent. minGiB <= 0 disables the check.
func CheckFreeSpace(name, path string, minGiB float64) Result {
	if minGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}
	target := existingParent(path)
	var st unix.Statfs_t
	if err := unix.Statfs(target, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", target, err), marker: services.ErrEnvironment}
	}
	freeGiB := float64(st.Bavail) * float64(st.Bsize) / (1 << 30)
	detail := fmt.Sprintf("%s (%.1f GiB free, need %.1f)", target, freeGiB, minGiB)
	if freeGiB < minGiB {
		return Result{Name: name, Detail: detail, marker: services.ErrEnvironment}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

func existingParent(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}

// CheckBucket verifies that the bucket is reachable and reports how many
// objects sit under prefix.
func CheckBucket(ctx context.Context, store storage.Store, bucket, prefix string) Result {
	const name = "Remote bucket"
	if store == nil {
		return Result{Name: name, Detail: "object store not configured", marker: services.ErrConfiguration}
	}
	listing, err := store.List(ctx, bucket, prefix, remoteSampleSize)
	if err != nil {
		return Result{Name: name, Detail: err.Error(), marker: services.ErrStorage}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("s3://%s/%s (%d object(s))", bucket, prefix, listing.Count)}
}

// CheckRemote looks up every planned key and, unless overwrite is allowed,
// fails when any of them already exists.
func CheckRemote(ctx context.Context, store storage.Store, bucket string, keys []string, overwrite bool) Result {
	const name = "Remote destination"
	if store == nil {
		return Result{Name: name, Detail: "object store not configured", marker: services.ErrConfiguration}
	}
	var existing []string
	for _, key := range keys {
		ok, err := store.Exists(ctx, bucket, key)
		if err != nil {
			return Result{Name: name, Detail: err.Error(), marker: services.ErrStorage}
		}
		if ok {
			existing = append(existing, key)
		}
	}
	if len(existing) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("s3://%s (%d planned object(s), none present)", bucket, len(keys))}
	}
	sample := existing
	if len(sample) > remoteSampleSize {
		sample = sample[:remoteSampleSize]
	}
	detail := fmt.Sprintf("s3://%s (%d of %d planned object(s) exist: %s)", bucket, len(existing), len(keys), strings.Join(sample, ", "))
	if overwrite {
		return Result{Name: name, Passed: true, Detail: detail}
	}
	return Result{Name: name, Detail: detail, marker: services.ErrStorage}
}
