// Package storage uploads files to public buckets and resolves their URLs.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// DefaultMaxFileSize is the upload limit when none is configured.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Buckets used by the site.
const (
	BucketGallery       = "gallery"
	BucketActivities    = "activities"
	BucketAnnouncements = "announcements"
)

const nameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Bucket is an object store with public read URLs.
type Bucket interface {
	Put(ctx context.Context, bucket, name, contentType string, body io.Reader, size int64) error
	Remove(ctx context.Context, bucket, name string) error
	PublicURL(bucket, name string) string
}

// File is an upload candidate held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Object describes a stored file.
type Object struct {
	Bucket    string `json:"bucket"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
	Size      int64  `json:"size"`
}

// Uploader enforces the size limit and names objects before handing them to a Bucket.
type Uploader struct {
	store   Bucket
	maxSize int64
	now     func() time.Time
}

// NewUploader constructs an uploader. A non-positive maxSize uses DefaultMaxFileSize.
func NewUploader(store Bucket, maxSize int64) *Uploader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Uploader{store: store, maxSize: maxSize, now: time.Now}
}

// MaxSize returns the byte limit.
func (u *Uploader) MaxSize() int64 {
	return u.maxSize
}

// Upload stores file under a generated unique name. Files over the limit are
// rejected before any upload starts. A failed upload is not cleaned up.
func (u *Uploader) Upload(ctx context.Context, file File, bucket string) (*Object, error) {
	if file.Size() > u.maxSize {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d MB", u.maxSize/(1024*1024)))
	}
	if len(file.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if bucket == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "bucket is required")
	}

	name, err := u.objectName(file.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to name upload")
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}

	if err := u.store.Put(ctx, bucket, name, contentType, bytes.NewReader(file.Data), file.Size()); err != nil {
		return nil, err
	}
	return &Object{
		Bucket:    bucket,
		Name:      name,
		Path:      bucket + "/" + name,
		PublicURL: u.store.PublicURL(bucket, name),
		Size:      file.Size(),
	}, nil
}

// Delete removes an object addressed as "bucket/name".
func (u *Uploader) Delete(ctx context.Context, path string) error {
	bucket, name, err := SplitPath(path)
	if err != nil {
		return err
	}
	return u.store.Remove(ctx, bucket, name)
}

// PublicURL resolves the public URL of an object.
func (u *Uploader) PublicURL(bucket, name string) string {
	return u.store.PublicURL(bucket, name)
}

// SplitPath splits "bucket/name" into its parts.
func SplitPath(path string) (string, string, error) {
	bucket, name, ok := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if !ok || bucket == "" || name == "" {
		return "", "", appErrors.Clone(appErrors.ErrValidation, "storage path must be bucket/name")
	}
	return bucket, name, nil
}

// objectName builds "<unix millis>-<6 random chars><ext>".
func (u *Uploader) objectName(original string) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(nameAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = nameAlphabet[n.Int64()]
	}
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), suffix, ext), nil
}
