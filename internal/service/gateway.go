package service

import (
	"context"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
)

// tableGateway is the table API each content service depends on.
type tableGateway[T any] interface {
	Name() string
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, fields repository.Fields) (*T, error)
	Update(ctx context.Context, id string, fields repository.Fields) (*T, error)
	Patch(ctx context.Context, id string, fields repository.Fields) error
	Delete(ctx context.Context, id string) error
}

// submissionNotifier is told about public form submissions. Failures never
// reach the submitter.
type submissionNotifier interface {
	ContactReceived(ctx context.Context, msg *models.ContactMessage)
	CertificateRequested(ctx context.Context, req *models.CertificateRequest)
}

func optional(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
