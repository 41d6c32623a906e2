// Package storage stores uploaded product images on a configurable disk.
//
// Two drivers are available:
//   - "local": local filesystem, served by the app under /storage
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disk, err := storage.New(ctx, cfg.Storage)
//	err = disk.Put(ctx, "products/<owner>/<uuid>.png", file, "image/png")
//	url := disk.URL("products/<owner>/<uuid>.png")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tradebridge/tradebridge/config"
)

// ErrInvalidPath is returned for keys that are empty, absolute, or escape
// the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the driver interface. Paths are slash-separated keys relative to
// the disk root.
type Disk interface {
	// Name returns the driver name ("local" or "s3").
	Name() string

	// Put writes r to key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) bool

	// Delete removes key. Returns nil if it did not exist.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for key.
	URL(key string) string
}

// New builds the disk selected by cfg.Disk.
func New(ctx context.Context, cfg config.StorageConfig) (Disk, error) {
	switch cfg.Disk {
	case "", "local":
		return NewLocalDisk(cfg.LocalRoot, cfg.URL)
	case "s3":
		return NewS3Disk(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: disk %q is not supported", cfg.Disk)
	}
}

// CleanKey normalises key and rejects traversal outside the root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidPath
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}
