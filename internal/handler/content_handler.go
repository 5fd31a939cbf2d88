package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/models"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/response"
	"github.com/A7maad1/LSA/pkg/storage"
)

type activityService interface {
	List(ctx context.Context) ([]models.Activity, error)
	Get(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, input models.ActivityInput) (*models.Activity, error)
	CreateWithImage(ctx context.Context, input models.ActivityInput, image storage.File) (*models.Activity, error)
	Update(ctx context.Context, id string, patch models.ActivityPatch) (*models.Activity, error)
	UpdateImage(ctx context.Context, id string, image storage.File) (*models.Activity, error)
	Delete(ctx context.Context, id string) error
}

type announcementService interface {
	List(ctx context.Context) ([]models.Announcement, error)
	Categories() []string
	Create(ctx context.Context, input models.AnnouncementInput) (*models.Announcement, error)
	CreateWithAttachment(ctx context.Context, input models.AnnouncementInput, file storage.File) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type galleryService interface {
	List(ctx context.Context) ([]models.GalleryItem, error)
	Create(ctx context.Context, input models.GalleryInput) (*models.GalleryItem, error)
	CreateWithImage(ctx context.Context, input models.GalleryInput, image storage.File) (*models.GalleryItem, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, order []models.GalleryOrder) error
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// ActivityHandler exposes activity management endpoints.
type ActivityHandler struct {
	service activityService
	maxSize int64
}

// NewActivityHandler constructs the handler. maxSize bounds image reads.
func NewActivityHandler(service activityService, maxSize int64) *ActivityHandler {
	return &ActivityHandler{service: service, maxSize: maxSize}
}

// List godoc
// @Summary List activities
// @Tags Activities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{Page: 1, PageSize: len(items), TotalCount: len(items)})
}

// Get godoc
// @Summary Get activity
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create activity
// @Description Accepts JSON, or multipart with an optional image field.
// @Tags Activities
// @Accept json,mpfd
// @Produce json
// @Param payload body models.ActivityInput true "Activity"
// @Success 201 {object} response.Envelope
// @Router /admin/activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var input models.ActivityInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	var (
		item *models.Activity
		err  error
	)
	image, err := h.image(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	if image != nil {
		item, err = h.service.CreateWithImage(c.Request.Context(), input, *image)
	} else {
		item, err = h.service.Create(c.Request.Context(), input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body models.ActivityPatch true "Changes"
// @Success 200 {object} response.Envelope
// @Router /admin/activities/{id} [patch]
func (h *ActivityHandler) Update(c *gin.Context) {
	var patch models.ActivityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateImage godoc
// @Summary Replace activity image
// @Tags Activities
// @Accept mpfd
// @Produce json
// @Param id path string true "Activity ID"
// @Param image formData file true "Image"
// @Success 200 {object} response.Envelope
// @Router /admin/activities/{id}/image [post]
func (h *ActivityHandler) UpdateImage(c *gin.Context) {
	image, err := h.image(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	if image == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image is required"))
		return
	}
	item, err := h.service.UpdateImage(c.Request.Context(), c.Param("id"), *image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete activity
// @Tags Activities
// @Param id path string true "Activity ID"
// @Success 204
// @Router /admin/activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ActivityHandler) image(c *gin.Context, field string) (*storage.File, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	return readUpload(c, field, h.maxSize)
}

// AnnouncementHandler exposes announcement management endpoints.
type AnnouncementHandler struct {
	service announcementService
	maxSize int64
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service announcementService, maxSize int64) *AnnouncementHandler {
	return &AnnouncementHandler{service: service, maxSize: maxSize}
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"categories": h.service.Categories()})
}

// Create godoc
// @Summary Create announcement
// @Description Accepts JSON, or multipart with an optional file attachment.
// @Tags Announcements
// @Accept json,mpfd
// @Produce json
// @Param payload body models.AnnouncementInput true "Announcement"
// @Success 201 {object} response.Envelope
// @Router /admin/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var input models.AnnouncementInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	var attachment *storage.File
	if isMultipart(c) {
		file, err := readUpload(c, "file", h.maxSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		attachment = file
	}
	var (
		item *models.Announcement
		err  error
	)
	if attachment != nil {
		item, err = h.service.CreateWithAttachment(c.Request.Context(), input, *attachment)
	} else {
		item, err = h.service.Create(c.Request.Context(), input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /admin/announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GalleryHandler exposes gallery management endpoints.
type GalleryHandler struct {
	service galleryService
	maxSize int64
}

// NewGalleryHandler constructs the handler.
func NewGalleryHandler(service galleryService, maxSize int64) *GalleryHandler {
	return &GalleryHandler{service: service, maxSize: maxSize}
}

// List godoc
// @Summary List gallery items
// @Tags Gallery
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/gallery [get]
func (h *GalleryHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add gallery item
// @Description Multipart with an image field, or JSON carrying image_url.
// @Tags Gallery
// @Accept json,mpfd
// @Produce json
// @Param payload body models.GalleryInput true "Gallery item"
// @Success 201 {object} response.Envelope
// @Router /admin/gallery [post]
func (h *GalleryHandler) Create(c *gin.Context) {
	var input models.GalleryInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	var image *storage.File
	if isMultipart(c) {
		file, err := readUpload(c, "image", h.maxSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		image = file
	}
	var (
		item *models.GalleryItem
		err  error
	)
	if image != nil {
		item, err = h.service.CreateWithImage(c.Request.Context(), input, *image)
	} else {
		item, err = h.service.Create(c.Request.Context(), input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Reorder godoc
// @Summary Set gallery order
// @Tags Gallery
// @Accept json
// @Param payload body []models.GalleryOrder true "New order"
// @Success 204
// @Router /admin/gallery/order [put]
func (h *GalleryHandler) Reorder(c *gin.Context) {
	var order []models.GalleryOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if err := h.service.Reorder(c.Request.Context(), order); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete gallery item
// @Tags Gallery
// @Param id path string true "Gallery item ID"
// @Success 204
// @Router /admin/gallery/{id} [delete]
func (h *GalleryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
