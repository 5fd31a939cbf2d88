package models

import "time"

// GalleryItem is one image in the public gallery.
type GalleryItem struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImageURL    string    `json:"image_url"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// GalleryInput is the admin form payload for gallery items.
type GalleryInput struct {
	Title       string  `json:"title" form:"title" validate:"required"`
	Description *string `json:"description" form:"description"`
	ImageURL    string  `json:"image_url" form:"image_url" validate:"omitempty,url"`
	OrderIndex  int     `json:"order_index" form:"order_index" validate:"gte=0"`
}

// GalleryOrder assigns an order_index to one item.
type GalleryOrder struct {
	ID         ID  `json:"id" validate:"required"`
	OrderIndex int `json:"order_index" validate:"gte=0"`
}
