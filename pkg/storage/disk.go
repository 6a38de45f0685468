// Package storage stores uploaded product images on a pluggable disk.
//
// Two drivers exist: "local" writes under STORAGE_LOCAL_ROOT and serves from
// STORAGE_URL; "s3" writes to any S3-compatible bucket (AWS, MinIO, R2).
//
//	disk, err := storage.Open()
//	key := storage.ObjectKey("products/7", header.Filename)
//	err = disk.Put(ctx, key, file, header.Header.Get("Content-Type"))
//	product.Image = disk.URL(key)
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("storage: object not found")
	ErrInvalidPath   = errors.New("storage: invalid path")
	ErrNotConfigured = errors.New("storage: no disk configured")
)

type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ObjectKey returns a collision-free key under dir that keeps the extension
// of filename.
func ObjectKey(dir, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(dir, "/"), uuid.NewString()+ext)
}

// cleanKey rejects absolute keys and keys escaping the disk root.
func cleanKey(key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	k := path.Clean("/" + strings.TrimSpace(key))
	if k == "/" {
		return "", ErrInvalidPath
	}
	return strings.TrimPrefix(k, "/"), nil
}
