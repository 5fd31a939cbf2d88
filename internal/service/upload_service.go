package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/imaging"
	"github.com/A7maad1/LSA/pkg/storage"
)

type objectStore interface {
	Upload(ctx context.Context, file storage.File, bucket string) (*storage.Object, error)
	Delete(ctx context.Context, path string) error
	MaxSize() int64
}

type imageCompressor interface {
	Compress(name string, data []byte) (*imaging.Result, error)
}

// UploadService stores files in public buckets. Images bound for the gallery
// and activities buckets are compressed first.
type UploadService struct {
	store      objectStore
	compressor imageCompressor
	metrics    *MetricsService
	logger     *zap.Logger
	compress   map[string]bool
}

// NewUploadService constructs the service. A nil compressor disables compression.
func NewUploadService(store objectStore, compressor imageCompressor, metrics *MetricsService, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		store:      store,
		compressor: compressor,
		metrics:    metrics,
		logger:     logger,
		compress: map[string]bool{
			storage.BucketGallery:    true,
			storage.BucketActivities: true,
		},
	}
}

// MaxSize returns the upload limit in bytes.
func (s *UploadService) MaxSize() int64 {
	return s.store.MaxSize()
}

// Upload stores file in bucket and returns the stored object. The size limit
// applies to the file as received.
func (s *UploadService) Upload(ctx context.Context, file storage.File, bucket string) (*storage.Object, error) {
	if file.Size() > s.store.MaxSize() {
		err := appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d MB", s.store.MaxSize()/(1024*1024)))
		s.metrics.RecordUpload(bucket, err)
		return nil, err
	}

	file = s.prepare(file, bucket)
	obj, err := s.store.Upload(ctx, file, bucket)
	s.metrics.RecordUpload(bucket, err)
	if err != nil {
		s.logger.Warn("upload failed", zap.String("bucket", bucket), zap.String("file", file.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("file uploaded", zap.String("path", obj.Path), zap.Int64("size", obj.Size))
	return obj, nil
}

// Delete removes an object addressed as "bucket/name".
func (s *UploadService) Delete(ctx context.Context, path string) error {
	if err := s.store.Delete(ctx, path); err != nil {
		return err
	}
	s.logger.Info("file deleted", zap.String("path", path))
	return nil
}

// Compose uploads file, then calls create with its public URL. When create
// fails the uploaded object is removed again and create's error is returned.
func (s *UploadService) Compose(ctx context.Context, file storage.File, bucket string, create func(ctx context.Context, publicURL string) error) (*storage.Object, error) {
	obj, err := s.Upload(ctx, file, bucket)
	if err != nil {
		return nil, err
	}
	if err := create(ctx, obj.PublicURL); err != nil {
		// The request context may already be done; cleanup still runs.
		if delErr := s.store.Delete(context.WithoutCancel(ctx), obj.Path); delErr != nil {
			s.logger.Error("failed to remove orphaned upload", zap.String("path", obj.Path), zap.Error(delErr))
		} else {
			s.logger.Info("orphaned upload removed", zap.String("path", obj.Path))
		}
		return nil, err
	}
	return obj, nil
}

func (s *UploadService) prepare(file storage.File, bucket string) storage.File {
	if s.compressor == nil || !s.compress[bucket] {
		return file
	}
	result, err := s.compressor.Compress(file.Name, file.Data)
	if err != nil {
		if !errors.Is(err, imaging.ErrNotImage) {
			s.logger.Warn("image compression failed, uploading original", zap.String("file", file.Name), zap.Error(err))
		}
		return file
	}
	s.logger.Debug("image compressed",
		zap.String("file", file.Name),
		zap.Int("before", len(file.Data)),
		zap.Int("after", len(result.Data)),
		zap.Bool("resized", result.Resized),
	)
	return storage.File{Name: result.Name, ContentType: result.ContentType, Data: result.Data}
}
