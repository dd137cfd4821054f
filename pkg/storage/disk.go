// Package storage stores uploaded menu images on a local directory or an
// S3-compatible bucket (AWS S3, MinIO, R2, Spaces).
//
//	disk, err := storage.Open(storage.FromConfig())
//	err = disk.Put(ctx, "menu/soup.jpg", file, "image/jpeg")
//	url := disk.URL("menu/soup.jpg")
package storage

import (
	"context"
	"fmt"
	"io"
)

// Disk is the driver interface every backend implements.
type Disk interface {
	// Put writes r to path, replacing any existing object.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) bool
	// Delete removes path. Removing a missing object is not an error.
	Delete(ctx context.Context, path string) error
	// URL returns the public URL clients use to fetch path.
	URL(path string) string
}

// Options selects and configures a driver.
type Options struct {
	Driver string // "local" or "s3"

	LocalRoot string
	LocalURL  string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string // empty for real AWS
	S3URL      string // public URL prefix; derived from bucket and region when empty
}

// Open builds the disk named by opts.Driver.
func Open(opts Options) (Disk, error) {
	switch opts.Driver {
	case "", "local":
		return newLocalDisk(opts.LocalRoot, opts.LocalURL)
	case "s3":
		return newS3Disk(opts)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
