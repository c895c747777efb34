package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Package storage keeps dispute evidence files in an S3-compatible object store.
// Uploads are streamed; nothing touches local disk.

// PutObjectOptions describe an upload. Size is the exact byte count, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for evidence files.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object's content; the caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL that needs no credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// EvidenceKey builds the object key for an evidence file: disputes/<disputeID>/<evidenceID><ext>.
// The extension is taken from filename and lower-cased.
func EvidenceKey(disputeID, evidenceID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("disputes/%s/%s%s", disputeID, evidenceID, ext)
}
