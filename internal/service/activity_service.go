package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	"github.com/A7maad1/LSA/pkg/storage"
)

// ActivityService manages school activities.
type ActivityService struct {
	table     tableGateway[models.Activity]
	uploads   *UploadService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(table tableGateway[models.Activity], uploads *UploadService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{table: table, uploads: uploads, cache: cache, validator: validate, logger: logger}
}

// List returns every activity, newest first.
func (s *ActivityService) List(ctx context.Context) ([]models.Activity, error) {
	rows, err := cachedList(ctx, s.cache, s.table.Name(), s.table.List)
	if err != nil {
		return nil, gatewayError(err, "failed to list activities")
	}
	return rows, nil
}

// Get returns one activity.
func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.table.Get(ctx, id)
	if err != nil {
		return nil, gatewayError(err, "failed to get activity")
	}
	return activity, nil
}

// Create stores a new activity.
func (s *ActivityService) Create(ctx context.Context, input models.ActivityInput) (*models.Activity, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	return s.insert(ctx, input)
}

func (s *ActivityService) insert(ctx context.Context, input models.ActivityInput) (*models.Activity, error) {
	activity, err := s.table.Create(ctx, repository.Fields{
		"title":       input.Title,
		"description": input.Description,
		"date":        input.Date,
		"image_url":   optional(input.ImageURL),
	})
	if err != nil {
		return nil, gatewayError(err, "failed to create activity")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("activity created", zap.String("id", activity.ID.String()))
	return activity, nil
}

// Update applies the non-nil fields of patch.
func (s *ActivityService) Update(ctx context.Context, id string, patch models.ActivityPatch) (*models.Activity, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err)
	}
	fields := repository.Fields{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Date != nil {
		fields["date"] = *patch.Date
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	return s.update(ctx, id, fields)
}

func (s *ActivityService) update(ctx context.Context, id string, fields repository.Fields) (*models.Activity, error) {
	activity, err := s.table.Update(ctx, id, fields)
	if err != nil {
		return nil, gatewayError(err, "failed to update activity")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return activity, nil
}

// Delete removes an activity. Its image is left in storage.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		return gatewayError(err, "failed to delete activity")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}

// CreateWithImage uploads image and creates the activity pointing at it. The
// upload is removed when the row cannot be created.
func (s *ActivityService) CreateWithImage(ctx context.Context, input models.ActivityInput, image storage.File) (*models.Activity, error) {
	input.ImageURL = nil
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	var created *models.Activity
	_, err := s.uploads.Compose(ctx, image, storage.BucketActivities, func(ctx context.Context, publicURL string) error {
		input.ImageURL = &publicURL
		activity, err := s.insert(ctx, input)
		created = activity
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateImage replaces the activity image.
func (s *ActivityService) UpdateImage(ctx context.Context, id string, image storage.File) (*models.Activity, error) {
	var updated *models.Activity
	_, err := s.uploads.Compose(ctx, image, storage.BucketActivities, func(ctx context.Context, publicURL string) error {
		activity, err := s.update(ctx, id, repository.Fields{"image_url": publicURL})
		updated = activity
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
