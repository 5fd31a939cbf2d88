package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/export"
)

// ExportSource loads the dataset for one resource.
type ExportSource func(ctx context.Context) (export.Dataset, error)

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService renders admin listings as CSV, JSON or PDF downloads.
type ExportService struct {
	sources map[string]ExportSource
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an empty service. Register sources before use.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{sources: map[string]ExportSource{}, logger: logger, now: time.Now}
}

// Register adds a named source.
func (s *ExportService) Register(resource string, source ExportSource) {
	s.sources[resource] = source
}

// Resources lists registered resource names.
func (s *ExportService) Resources() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export renders resource in format.
func (s *ExportService) Export(ctx context.Context, resource string, format export.Format) (*ExportFile, error) {
	source, ok := s.sources[resource]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown export %q", resource))
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	data, err := source(ctx)
	if err != nil {
		return nil, gatewayError(err, "failed to load export data")
	}
	if data.Title == "" {
		data.Title = resource
	}
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("export rendered", zap.String("resource", resource), zap.String("format", string(format)), zap.Int("rows", len(data.Rows)))
	return &ExportFile{
		Name:        export.Filename(resource, s.now().Format("2006-01-02"), renderer),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

// ListSource adapts a list call and a row mapper into an ExportSource.
func ListSource[T any](list func(context.Context) ([]T, error), build func([]T) export.Dataset) ExportSource {
	return func(ctx context.Context) (export.Dataset, error) {
		rows, err := list(ctx)
		if err != nil {
			return export.Dataset{}, err
		}
		return build(rows), nil
	}
}

// ActivitiesDataset maps activities to export rows.
func ActivitiesDataset(rows []models.Activity) export.Dataset {
	data := export.Dataset{Title: "activities", Headers: []string{"id", "title", "description", "date", "image_url", "created_at"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id": r.ID.String(), "title": r.Title, "description": r.Description,
			"date": r.Date, "image_url": deref(r.ImageURL), "created_at": stamp(r.CreatedAt),
		})
	}
	return data
}

// AnnouncementsDataset maps announcements to export rows.
func AnnouncementsDataset(rows []models.Announcement) export.Dataset {
	data := export.Dataset{Title: "announcements", Headers: []string{"id", "title", "category", "content", "file_url", "created_at"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id": r.ID.String(), "title": r.Title, "category": r.Category,
			"content": r.Content, "file_url": deref(r.FileURL), "created_at": stamp(r.CreatedAt),
		})
	}
	return data
}

// GalleryDataset maps gallery items to export rows.
func GalleryDataset(rows []models.GalleryItem) export.Dataset {
	data := export.Dataset{Title: "gallery", Headers: []string{"id", "title", "description", "image_url", "order_index"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id": r.ID.String(), "title": r.Title, "description": deref(r.Description),
			"image_url": r.ImageURL, "order_index": strconv.Itoa(r.OrderIndex),
		})
	}
	return data
}

// CertificatesDataset maps certificate requests to export rows.
func CertificatesDataset(rows []models.CertificateRequest) export.Dataset {
	data := export.Dataset{Title: "certificates", Headers: []string{"id", "first_name", "last_name", "massar_number", "submission_date", "status", "notes"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id": r.ID.String(), "first_name": r.FirstName, "last_name": r.LastName,
			"massar_number": r.MassarNumber, "submission_date": r.SubmissionDate,
			"status": string(r.Status), "notes": deref(r.Notes),
		})
	}
	return data
}

// ContactsDataset maps contact messages to export rows.
func ContactsDataset(rows []models.ContactMessage) export.Dataset {
	data := export.Dataset{Title: "contacts", Headers: []string{"id", "name", "email", "phone", "subject", "message", "is_read", "created_at"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id": r.ID.String(), "name": r.Name, "email": r.Email, "phone": deref(r.Phone),
			"subject": r.Subject, "message": r.Message, "is_read": strconv.FormatBool(r.IsRead),
			"created_at": stamp(r.CreatedAt),
		})
	}
	return data
}

// MeetingsDataset maps meetings to export rows.
func MeetingsDataset(rows []models.Meeting) export.Dataset {
	data := export.Dataset{Title: "meetings", Headers: []string{"id", "subject", "meeting_date", "location", "description"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id": r.ID.String(), "subject": r.Subject, "meeting_date": r.MeetingDate,
			"location": r.Location, "description": deref(r.Description),
		})
	}
	return data
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
