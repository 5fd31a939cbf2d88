package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/imaging"
	"github.com/A7maad1/LSA/pkg/storage"
)

type memCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

type fakeStore struct {
	mu        sync.Mutex
	uploaded  []storage.File
	deleted   []string
	uploadErr error
	deleteErr error
	max       int64
}

func (s *fakeStore) Upload(_ context.Context, file storage.File, bucket string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploaded = append(s.uploaded, file)
	name := "1700000000000-abcdef" + strings.ToLower(file.Name[strings.LastIndex(file.Name, "."):])
	return &storage.Object{
		Bucket:    bucket,
		Name:      name,
		Path:      bucket + "/" + name,
		PublicURL: "https://cdn.example.ma/" + bucket + "/" + name,
		Size:      file.Size(),
	}, nil
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, path)
	return s.deleteErr
}

func (s *fakeStore) MaxSize() int64 {
	if s.max > 0 {
		return s.max
	}
	return storage.DefaultMaxFileSize
}

type fakeCompressor struct {
	calls int
}

func (c *fakeCompressor) Compress(name string, data []byte) (*imaging.Result, error) {
	c.calls++
	if !strings.HasSuffix(name, ".jpg") {
		return nil, imaging.ErrNotImage
	}
	return &imaging.Result{Name: name, ContentType: "image/jpeg", Data: data[:len(data)/2], Resized: true}, nil
}

type recordingNotifier struct {
	contacts     []*models.ContactMessage
	certificates []*models.CertificateRequest
}

func (n *recordingNotifier) ContactReceived(_ context.Context, msg *models.ContactMessage) {
	n.contacts = append(n.contacts, msg)
}

func (n *recordingNotifier) CertificateRequested(_ context.Context, req *models.CertificateRequest) {
	n.certificates = append(n.certificates, req)
}

func newTestTables() (*repository.MemoryBackend, *repository.Tables) {
	backend := repository.NewMemoryBackend()
	return backend, repository.NewTables(backend, nil)
}

func strPtr(s string) *string {
	return &s
}
