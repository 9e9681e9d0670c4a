// Package storage places encoded outputs in S3-compatible object storage.
//
// Store is the narrow capability the run depends on: put an object and list
// what already sits under a prefix. S3 implements it with minio-go; Memory
// is an in-process store used by tests and dry runs.
package storage
