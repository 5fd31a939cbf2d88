package models

import "time"

// DefaultAnnouncementCategory is applied when a category is omitted.
const DefaultAnnouncementCategory = "عام"

// AnnouncementCategories drives the public category filter.
var AnnouncementCategories = []string{
	DefaultAnnouncementCategory,
	"امتحانات",
	"إجازات",
	"مسابقات",
	"مذكرات وزارية",
	"تنبيهات مهمة",
}

// Announcement is a published notice. It is never edited after creation.
type Announcement struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	FileURL   *string   `json:"file_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AnnouncementInput is the admin form payload for announcements.
type AnnouncementInput struct {
	Title    string  `json:"title" form:"title" validate:"required"`
	Content  string  `json:"content" form:"content" validate:"required"`
	Category string  `json:"category" form:"category"`
	FileURL  *string `json:"file_url" form:"file_url" validate:"omitempty,url"`
}
