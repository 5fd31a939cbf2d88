package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/storage"
)

// GalleryService manages gallery images.
type GalleryService struct {
	table     tableGateway[models.GalleryItem]
	uploads   *UploadService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGalleryService constructs the service.
func NewGalleryService(table tableGateway[models.GalleryItem], uploads *UploadService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GalleryService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{table: table, uploads: uploads, cache: cache, validator: validate, logger: logger}
}

// List returns gallery items by ascending order_index.
func (s *GalleryService) List(ctx context.Context) ([]models.GalleryItem, error) {
	rows, err := cachedList(ctx, s.cache, s.table.Name(), s.table.List)
	if err != nil {
		return nil, gatewayError(err, "failed to list gallery")
	}
	return rows, nil
}

// Create adds an item whose image is already hosted.
func (s *GalleryService) Create(ctx context.Context, input models.GalleryInput) (*models.GalleryItem, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	if input.ImageURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid fields: image_url (required)")
	}
	return s.insert(ctx, input)
}

func (s *GalleryService) insert(ctx context.Context, input models.GalleryInput) (*models.GalleryItem, error) {
	item, err := s.table.Create(ctx, repository.Fields{
		"title":       input.Title,
		"description": optional(input.Description),
		"image_url":   input.ImageURL,
		"order_index": input.OrderIndex,
	})
	if err != nil {
		return nil, gatewayError(err, "failed to create gallery item")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("gallery item created", zap.String("id", item.ID.String()))
	return item, nil
}

// CreateWithImage compresses and uploads image, then creates the item.
func (s *GalleryService) CreateWithImage(ctx context.Context, input models.GalleryInput, image storage.File) (*models.GalleryItem, error) {
	input.ImageURL = ""
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	var created *models.GalleryItem
	_, err := s.uploads.Compose(ctx, image, storage.BucketGallery, func(ctx context.Context, publicURL string) error {
		input.ImageURL = publicURL
		item, err := s.insert(ctx, input)
		created = item
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes an item.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		return gatewayError(err, "failed to delete gallery item")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}

// Reorder writes order_index for each listed item. It stops at the first
// failure; earlier writes are kept.
func (s *GalleryService) Reorder(ctx context.Context, order []models.GalleryOrder) error {
	if len(order) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "order is empty")
	}
	for _, entry := range order {
		if err := s.validator.Struct(entry); err != nil {
			return validationError(err)
		}
	}
	defer s.cache.InvalidateTable(ctx, s.table.Name())
	for _, entry := range order {
		if err := s.table.Patch(ctx, entry.ID.String(), repository.Fields{"order_index": entry.OrderIndex}); err != nil {
			return gatewayError(err, "failed to reorder gallery")
		}
	}
	s.logger.Info("gallery reordered", zap.Int("items", len(order)))
	return nil
}
