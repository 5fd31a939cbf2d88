package repository

import (
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/pkg/restclient"
)

// Table names.
const (
	TableActivities    = "activities"
	TableAnnouncements = "announcements"
	TableGallery       = "gallery"
	TableCertificates  = "certificate_requests"
	TableContacts      = "contacts"
	TableMeetings      = "meetings"
)

var ActivityDescriptor = Descriptor{
	Table:        TableActivities,
	Order:        "created_at.desc",
	Columns:      []string{"title", "description", "date", "image_url"},
	Required:     []string{"title", "description"},
	MaxLengths:   map[string]int{"title": 255, "description": 5000},
	StampCreated: true,
	StampUpdated: true,
}

var AnnouncementDescriptor = Descriptor{
	Table:        TableAnnouncements,
	Order:        "created_at.desc",
	Columns:      []string{"title", "content", "category", "file_url"},
	Required:     []string{"title", "content"},
	MaxLengths:   map[string]int{"title": 255, "content": 5000},
	Defaults:     map[string]interface{}{"category": models.DefaultAnnouncementCategory},
	StampCreated: true,
}

var GalleryDescriptor = Descriptor{
	Table:        TableGallery,
	Order:        "order_index.asc",
	Columns:      []string{"title", "description", "image_url", "order_index"},
	Required:     []string{"title", "image_url"},
	MaxLengths:   map[string]int{"title": 255, "description": 1000},
	Defaults:     map[string]interface{}{"order_index": 0},
	StampCreated: true,
}

var CertificateDescriptor = Descriptor{
	Table:   TableCertificates,
	Order:   "created_at.desc",
	Columns: []string{"first_name", "last_name", "massar_number", "submission_date", "birth_date", "status", "notes"},
	Required: []string{
		"first_name", "last_name", "massar_number", "submission_date",
	},
	MaxLengths: map[string]int{
		"first_name": 100, "last_name": 100, "massar_number": 50, "notes": 1000,
	},
	Defaults:     map[string]interface{}{"status": string(models.CertificatePending)},
	StampCreated: true,
	StampUpdated: true,
}

var ContactDescriptor = Descriptor{
	Table:    TableContacts,
	Order:    "created_at.desc",
	Columns:  []string{"name", "email", "phone", "subject", "message", "is_read"},
	Required: []string{"name", "email", "subject", "message"},
	MaxLengths: map[string]int{
		"name": 100, "email": 100, "phone": 20, "subject": 255, "message": 5000,
	},
	Defaults:     map[string]interface{}{"is_read": false},
	StampCreated: true,
}

var MeetingDescriptor = Descriptor{
	Table:        TableMeetings,
	Order:        "meeting_date.desc",
	Columns:      []string{"subject", "meeting_date", "location", "description"},
	Required:     []string{"subject", "meeting_date"},
	MaxLengths:   map[string]int{"subject": 255, "location": 255, "description": 5000},
	StampCreated: true,
}

// Tables groups the gateways for every content table.
type Tables struct {
	Activities    *Table[models.Activity]
	Announcements *Table[models.Announcement]
	Gallery       *Table[models.GalleryItem]
	Certificates  *Table[models.CertificateRequest]
	Contacts      *Table[models.ContactMessage]
	Meetings      *Table[models.Meeting]
}

// NewTables builds all gateways over one backend.
func NewTables(backend Backend, logger *zap.Logger) *Tables {
	return &Tables{
		Activities:    NewTable[models.Activity](backend, ActivityDescriptor, logger),
		Announcements: NewTable[models.Announcement](backend, AnnouncementDescriptor, logger),
		Gallery:       NewTable[models.GalleryItem](backend, GalleryDescriptor, logger),
		Certificates:  NewTable[models.CertificateRequest](backend, CertificateDescriptor, logger),
		Contacts:      NewTable[models.ContactMessage](backend, ContactDescriptor, logger),
		Meetings:      NewTable[models.Meeting](backend, MeetingDescriptor, logger),
	}
}

// WithRetry enables read retries on every gateway.
func (t *Tables) WithRetry(policy restclient.RetryPolicy) *Tables {
	t.Activities.WithRetry(policy)
	t.Announcements.WithRetry(policy)
	t.Gallery.WithRetry(policy)
	t.Certificates.WithRetry(policy)
	t.Contacts.WithRetry(policy)
	t.Meetings.WithRetry(policy)
	return t
}
