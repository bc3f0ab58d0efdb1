// Package storage contains object store abstractions for S3-compatible
// backends and the receipt image gateway built on top of them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"fuelapi/internal/config"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its
	// info. A missing key yields ErrObjectNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return NewS3(ctx, cfg)
	case config.StorageDriverMinIO, "":
		return NewMinIO(ctx, cfg)
	default:
		return nil, eris.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// PublicBaseURL returns the URL prefix under which objects of cfg.Bucket are
// addressable. An explicit cfg.PublicBaseURL always wins.
func PublicBaseURL(cfg config.StorageConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Driver == config.StorageDriverS3 && cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := cfg.Endpoint
	if i := strings.Index(endpoint, "://"); i >= 0 {
		scheme = endpoint[:i]
		endpoint = endpoint[i+3:]
	}
	return fmt.Sprintf("%s://%s/%s", scheme, strings.TrimRight(endpoint, "/"), cfg.Bucket)
}
