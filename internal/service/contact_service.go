package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
)

// ContactService stores contact form messages. Messages change only when
// marked as read.
type ContactService struct {
	table     tableGateway[models.ContactMessage]
	notifier  submissionNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs the service. notifier may be nil.
func NewContactService(table tableGateway[models.ContactMessage], notifier submissionNotifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{table: table, notifier: notifier, cache: cache, validator: validate, logger: logger}
}

// List returns every message, newest first.
func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := cachedList(ctx, s.cache, s.table.Name(), s.table.List)
	if err != nil {
		return nil, gatewayError(err, "failed to list messages")
	}
	return rows, nil
}

// Create stores a message from the public form.
func (s *ContactService) Create(ctx context.Context, input models.ContactInput) (*models.ContactMessage, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	msg, err := s.table.Create(ctx, repository.Fields{
		"name":    input.Name,
		"email":   input.Email,
		"phone":   input.Phone,
		"subject": input.Subject,
		"message": input.Message,
		"is_read": false,
	})
	if err != nil {
		return nil, gatewayError(err, "failed to send message")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("contact message received", zap.String("id", msg.ID.String()))
	if s.notifier != nil {
		s.notifier.ContactReceived(ctx, msg)
	}
	return msg, nil
}

// MarkAsRead sets is_read on one message with a single narrow update.
func (s *ContactService) MarkAsRead(ctx context.Context, id string) error {
	if err := s.table.Patch(ctx, id, repository.Fields{"is_read": true}); err != nil {
		return gatewayError(err, "failed to mark message as read")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}

// Delete removes a message.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		return gatewayError(err, "failed to delete message")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}

// UnreadCount counts messages not yet read.
func (s *ContactService) UnreadCount(ctx context.Context) (int, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return countUnread(rows), nil
}

func countUnread(rows []models.ContactMessage) int {
	n := 0
	for _, row := range rows {
		if !row.IsRead {
			n++
		}
	}
	return n
}
