package models

import "time"

// CertificateStatus tracks a certificate request through review.
type CertificateStatus string

const (
	CertificatePending   CertificateStatus = "pending"
	CertificateApproved  CertificateStatus = "approved"
	CertificateRejected  CertificateStatus = "rejected"
	CertificateCompleted CertificateStatus = "completed"
)

// CertificateStatuses lists the permitted statuses. Any status may move to any other.
var CertificateStatuses = []CertificateStatus{
	CertificatePending,
	CertificateApproved,
	CertificateRejected,
	CertificateCompleted,
}

// Valid reports whether s is a permitted status.
func (s CertificateStatus) Valid() bool {
	for _, candidate := range CertificateStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// CertificateRequest is a student's request for a school certificate.
type CertificateRequest struct {
	ID             ID                `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	MassarNumber   string            `json:"massar_number"`
	SubmissionDate string            `json:"submission_date"`
	BirthDate      string            `json:"birth_date,omitempty"`
	Status         CertificateStatus `json:"status"`
	Notes          *string           `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// FullName joins first and last names.
func (c CertificateRequest) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CertificateInput is the public request form.
type CertificateInput struct {
	FirstName      string `json:"first_name" form:"first_name" validate:"required"`
	LastName       string `json:"last_name" form:"last_name" validate:"required"`
	MassarNumber   string `json:"massar_number" form:"massar_number" validate:"required,massar"`
	SubmissionDate string `json:"submission_date" form:"submission_date" validate:"required,isodate"`
	BirthDate      string `json:"birth_date" form:"birth_date" validate:"omitempty,isodate"`
	Notes          string `json:"notes" form:"notes"`
}

// CertificateStatusUpdate is the admin status change payload.
type CertificateStatusUpdate struct {
	Status CertificateStatus `json:"status" validate:"required,certstatus"`
	Notes  *string           `json:"notes"`
}
