package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/service"
	"github.com/A7maad1/LSA/pkg/response"
)

type certificateService interface {
	List(ctx context.Context) ([]models.CertificateRequest, error)
	Create(ctx context.Context, input models.CertificateInput) (*models.CertificateRequest, error)
	UpdateStatus(ctx context.Context, id string, update models.CertificateStatusUpdate) (*models.CertificateRequest, error)
	Delete(ctx context.Context, id string) error
}

type contactService interface {
	List(ctx context.Context) ([]models.ContactMessage, error)
	Create(ctx context.Context, input models.ContactInput) (*models.ContactMessage, error)
	MarkAsRead(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type meetingService interface {
	List(ctx context.Context) ([]models.Meeting, error)
	Schedule(ctx context.Context) (*service.MeetingSchedule, error)
	Create(ctx context.Context, input models.MeetingInput) (*models.Meeting, error)
	Delete(ctx context.Context, id string) error
}

// CertificateHandler exposes certificate request endpoints.
type CertificateHandler struct {
	service certificateService
}

// NewCertificateHandler constructs the handler.
func NewCertificateHandler(service certificateService) *CertificateHandler {
	return &CertificateHandler{service: service}
}

// List godoc
// @Summary List certificate requests
// @Tags Certificates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"stats": service.SummarizeCertificates(items)})
}

// Create godoc
// @Summary Submit a certificate request
// @Tags Certificates
// @Accept json
// @Produce json
// @Param payload body models.CertificateInput true "Request"
// @Success 201 {object} response.Envelope
// @Router /certificates [post]
func (h *CertificateHandler) Create(c *gin.Context) {
	var input models.CertificateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateStatus godoc
// @Summary Change certificate request status
// @Tags Certificates
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body models.CertificateStatusUpdate true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/certificates/{id}/status [patch]
func (h *CertificateHandler) UpdateStatus(c *gin.Context) {
	var update models.CertificateStatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete certificate request
// @Tags Certificates
// @Param id path string true "Request ID"
// @Success 204
// @Router /admin/certificates/{id} [delete]
func (h *CertificateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ContactHandler exposes contact message endpoints.
type ContactHandler struct {
	service contactService
}

// NewContactHandler constructs the handler.
func NewContactHandler(service contactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// List godoc
// @Summary List contact messages
// @Tags Contacts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Send a contact message
// @Tags Contacts
// @Accept json
// @Produce json
// @Param payload body models.ContactInput true "Message"
// @Success 201 {object} response.Envelope
// @Router /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var input models.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// MarkAsRead godoc
// @Summary Mark a contact message as read
// @Tags Contacts
// @Param id path string true "Message ID"
// @Success 204
// @Router /admin/contacts/{id}/read [patch]
func (h *ContactHandler) MarkAsRead(c *gin.Context) {
	if err := h.service.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnreadCount godoc
// @Summary Count unread contact messages
// @Tags Contacts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/contacts/unread-count [get]
func (h *ContactHandler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"unread": n}, nil)
}

// Delete godoc
// @Summary Delete contact message
// @Tags Contacts
// @Param id path string true "Message ID"
// @Success 204
// @Router /admin/contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MeetingHandler exposes meeting endpoints.
type MeetingHandler struct {
	service meetingService
}

// NewMeetingHandler constructs the handler.
func NewMeetingHandler(service meetingService) *MeetingHandler {
	return &MeetingHandler{service: service}
}

// List godoc
// @Summary List meetings
// @Tags Meetings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Schedule godoc
// @Summary Upcoming and past meetings
// @Tags Meetings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/meetings/schedule [get]
func (h *MeetingHandler) Schedule(c *gin.Context) {
	schedule, err := h.service.Schedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Create meeting
// @Tags Meetings
// @Accept json
// @Produce json
// @Param payload body models.MeetingInput true "Meeting"
// @Success 201 {object} response.Envelope
// @Router /admin/meetings [post]
func (h *MeetingHandler) Create(c *gin.Context) {
	var input models.MeetingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	item, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Delete godoc
// @Summary Delete meeting
// @Tags Meetings
// @Param id path string true "Meeting ID"
// @Success 204
// @Router /admin/meetings/{id} [delete]
func (h *MeetingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
