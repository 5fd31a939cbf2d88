package models

import "time"

// Meeting is a scheduled parents or staff meeting.
type Meeting struct {
	ID          ID        `json:"id"`
	Subject     string    `json:"subject"`
	MeetingDate string    `json:"meeting_date"`
	Location    string    `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MeetingInput is the admin form payload for meetings.
type MeetingInput struct {
	Subject     string  `json:"subject" form:"subject" validate:"required"`
	MeetingDate string  `json:"meeting_date" form:"meeting_date" validate:"required"`
	Location    string  `json:"location" form:"location"`
	Description *string `json:"description" form:"description"`
}
