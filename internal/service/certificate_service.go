package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// CertificateService handles certificate requests from students.
type CertificateService struct {
	table     tableGateway[models.CertificateRequest]
	notifier  submissionNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// CertificateStats counts requests per status.
type CertificateStats struct {
	Total     int                              `json:"total"`
	ByStatus  map[models.CertificateStatus]int `json:"by_status"`
	Completed int                              `json:"completed"`
}

// NewCertificateService constructs the service. notifier may be nil.
func NewCertificateService(table tableGateway[models.CertificateRequest], notifier submissionNotifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CertificateService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{table: table, notifier: notifier, cache: cache, validator: validate, logger: logger}
}

// List returns every request, newest first.
func (s *CertificateService) List(ctx context.Context) ([]models.CertificateRequest, error) {
	rows, err := cachedList(ctx, s.cache, s.table.Name(), s.table.List)
	if err != nil {
		return nil, gatewayError(err, "failed to list certificate requests")
	}
	return rows, nil
}

// Create files a new request. The status is always pending regardless of input.
func (s *CertificateService) Create(ctx context.Context, input models.CertificateInput) (*models.CertificateRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, validationError(err)
	}
	request, err := s.table.Create(ctx, repository.Fields{
		"first_name":      input.FirstName,
		"last_name":       input.LastName,
		"massar_number":   input.MassarNumber,
		"submission_date": input.SubmissionDate,
		"birth_date":      input.BirthDate,
		"notes":           input.Notes,
		"status":          string(models.CertificatePending),
	})
	if err != nil {
		return nil, gatewayError(err, "failed to create certificate request")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("certificate requested", zap.String("id", request.ID.String()))
	if s.notifier != nil {
		s.notifier.CertificateRequested(ctx, request)
	}
	return request, nil
}

// UpdateStatus moves a request to another status. Any permitted status may
// follow any other. Unknown statuses fail before the backend is called.
func (s *CertificateService) UpdateStatus(ctx context.Context, id string, update models.CertificateStatusUpdate) (*models.CertificateRequest, error) {
	if !update.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", update.Status))
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, validationError(err)
	}
	fields := repository.Fields{"status": string(update.Status)}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}
	request, err := s.table.Update(ctx, id, fields)
	if err != nil {
		return nil, gatewayError(err, "failed to update certificate status")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	s.logger.Info("certificate status changed", zap.String("id", id), zap.String("status", string(update.Status)))
	return request, nil
}

// Delete removes a request.
func (s *CertificateService) Delete(ctx context.Context, id string) error {
	if err := s.table.Delete(ctx, id); err != nil {
		return gatewayError(err, "failed to delete certificate request")
	}
	s.cache.InvalidateTable(ctx, s.table.Name())
	return nil
}

// SummarizeCertificates counts requests per status for the dashboard.
func SummarizeCertificates(requests []models.CertificateRequest) CertificateStats {
	stats := CertificateStats{Total: len(requests), ByStatus: map[models.CertificateStatus]int{}}
	for _, status := range models.CertificateStatuses {
		stats.ByStatus[status] = 0
	}
	for _, r := range requests {
		stats.ByStatus[r.Status]++
	}
	stats.Completed = stats.ByStatus[models.CertificateCompleted]
	return stats
}
