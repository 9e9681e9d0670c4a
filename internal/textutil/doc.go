// Package textutil sanitizes names for filesystem and object-store use.
//
// SanitizeFileName keeps output filenames safe for local disks, and
// ObjectKey folds a name to the ASCII subset that S3-compatible stores and
// the URLs pointing at them handle without escaping.
package textutil
