package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	"github.com/A7maad1/LSA/pkg/storage"
)

// AnnouncementService publishes announcements. Announcements are never
// edited once created; they can only be deleted.
type AnnouncementService struct {
	table     tableGateway[models.Announcement]
	uploads   *UploadService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(table tableGateway[models.Announcement], uploads *UploadService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{table: table, uploads: uploads, cache: cache, validator: validate, logger: logger}
}

// List returns every announcement, newest first.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	rows, err := cachedList(ctx, s.cache, s.table.Name(), s.table.List)
	if err != nil {
		return nil, gatewayError(err, "failed to list announcements")
	}
	return rows, nil
}

// Categories returns the categories offered by the public filter.
func (s *AnnouncementService) Categories() []string {
	return append([]string(nil), models.AnnouncementCategories...)
}

// Create publishes an announcement. A blank category becomes the default one.
func (s *AnnouncementService) Create(ctx context.Context, input models.AnnouncementInput) (*models.Announcement, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	return s.insert(ctx, input)
}

func (s *AnnouncementService) insert(ctx context.Context, input models.AnnouncementInput) (*models.Announcement, error) {
	announcement, err := s.table.Create(ctx, repository.Fields{
		"title":    input.Title,
		"content":  input.Content,
		"category": strings.TrimSpace(input.Category),
		"file_url": optional(input.FileURL),
	})
	if err != nil {
		return nil, gatewayError(err, "failed to create announcement")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("announcement published", zap.String("id", announcement.ID.String()), zap.String("category", announcement.Category))
	return announcement, nil
}

// CreateWithAttachment uploads file and publishes the announcement linking to it.
func (s *AnnouncementService) CreateWithAttachment(ctx context.Context, input models.AnnouncementInput, file storage.File) (*models.Announcement, error) {
	input.FileURL = nil
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	var created *models.Announcement
	_, err := s.uploads.Compose(ctx, file, storage.BucketAnnouncements, func(ctx context.Context, publicURL string) error {
		input.FileURL = &publicURL
		announcement, err := s.insert(ctx, input)
		created = announcement
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		return gatewayError(err, "failed to delete announcement")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}
