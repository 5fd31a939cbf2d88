package models

import "time"

// Activity is a school event shown on the activities page.
type Activity struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActivityInput is the admin form payload for activities.
type ActivityInput struct {
	Title       string  `json:"title" form:"title" validate:"required"`
	Description string  `json:"description" form:"description" validate:"required"`
	Date        string  `json:"date" form:"date" validate:"omitempty,isodate"`
	ImageURL    *string `json:"image_url" form:"image_url" validate:"omitempty,url"`
}

// ActivityPatch carries partial activity updates.
type ActivityPatch struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Date        *string `json:"date" validate:"omitempty,isodate"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
}
