package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"podknight/internal/config"
	"podknight/internal/services"
)

// S3 stores objects through the minio client.
type S3 struct {
	client *minio.Client
}

// NewS3 builds an S3 store from the [storage] section.
func NewS3(cfg config.Storage) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "connect", "S3 client could not be created", err)
	}
	return &S3{client: client}, nil
}

func (s *S3) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, meta Metadata) (Location, error) {
	info, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  ContentTypeFor(key),
		UserMetadata: map[string]string(meta),
	})
	if err != nil {
		return Location{}, services.Wrap(services.ErrStorage, "upload", "put",
			fmt.Sprintf("Object %s/%s could not be stored", bucket, key), err)
	}
	return Location{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		URL:    s.objectURL(bucket, key),
	}, nil
}

func (s *S3) List(ctx context.Context, bucket, prefix string, sample int) (Listing, error) {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return Listing{}, services.Wrap(services.ErrStorage, "storage", "bucket", "Bucket could not be checked", err)
	}
	if !exists {
		return Listing{}, services.Wrap(services.ErrStorage, "storage", "bucket",
			fmt.Sprintf("Bucket %q does not exist", bucket), nil)
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var listing Listing
	for obj := range s.client.ListObjects(listCtx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return Listing{}, services.Wrap(services.ErrStorage, "storage", "list", "Objects could not be listed", obj.Err)
		}
		listing.Count++
		if len(listing.Sample) < sample {
			listing.Sample = append(listing.Sample, obj.Key)
		}
	}
	return listing, nil
}

func (s *S3) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, services.Wrap(services.ErrStorage, "storage", "stat",
		fmt.Sprintf("Object %s/%s could not be checked", bucket, key), err)
}

func (s *S3) objectURL(bucket, key string) string {
	endpoint := s.client.EndpointURL()
	if endpoint == nil {
		return ""
	}
	return strings.TrimRight(endpoint.String(), "/") + "/" + bucket + "/" + key
}
