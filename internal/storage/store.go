package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"podknight/internal/services"
	"podknight/internal/textutil"
)

// Metadata is user metadata stored with an object.
type Metadata map[string]string

// Location identifies a stored object.
type Location struct {
	Bucket string
	Key    string
	ETag   string
	URL    string
}

func (l Location) String() string {
	if l.URL != "" {
		return l.URL
	}
	return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)
}

// Listing summarizes the objects under a prefix.
type Listing struct {
	Count  int
	Sample []string
}

// Store is an object store.
type Store interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, meta Metadata) (Location, error)
	List(ctx context.Context, bucket, prefix string, sample int) (Listing, error)
	// Exists reports whether key is present. A missing bucket is an error.
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

var contentTypes = map[string]string{
	".mp3": "audio/mpeg",
	".mp4": "video/mp4",
	".m4a": "audio/mp4",
}

// ContentTypeFor guesses the MIME type from the file extension.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// KeyFor joins prefix and a folded filename into an object key.
func KeyFor(prefix, filename string) string {
	name := textutil.ObjectKey(filepath.Base(filename))
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// UploadFile puts the file at localPath under key.
func UploadFile(ctx context.Context, store Store, bucket, key, localPath string, meta Metadata) (Location, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Location{}, services.Wrap(services.ErrStorage, "upload", "open", "Output file could not be opened", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return Location{}, services.Wrap(services.ErrStorage, "upload", "stat", "Output file could not be read", err)
	}
	return store.Put(ctx, bucket, key, file, info.Size(), meta)
}
