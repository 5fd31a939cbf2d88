package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/middleware"
	"github.com/A7maad1/LSA/internal/models"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/response"
)

// SessionHandler exposes the session manager to API clients.
type SessionHandler struct{}

// NewSessionHandler constructs the handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionPayload struct {
	SessionID string              `json:"session_id"`
	User      *models.SessionUser `json:"user"`
	Token     string              `json:"token"`
}

// Login godoc
// @Summary Sign in
// @Description Pass the returned session_id back in the X-Session-ID header.
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	user, err := session.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessionPayload{SessionID: session.ID(), User: user, Token: session.Token()}, nil)
}

// Logout godoc
// @Summary Sign out
// @Tags Session
// @Success 204
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	if session := middleware.SessionFrom(c); session != nil {
		session.SignOut(c.Request.Context())
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/session [get]
func (h *SessionHandler) Me(c *gin.Context) {
	session := middleware.SessionFrom(c)
	response.JSON(c, http.StatusOK, sessionPayload{SessionID: session.ID(), User: session.User(), Token: session.Token()}, nil)
}

// Refresh godoc
// @Summary Re-issue the session token
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/session/refresh [post]
func (h *SessionHandler) Refresh(c *gin.Context) {
	session := middleware.SessionFrom(c)
	refreshed, err := session.RefreshToken(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !refreshed {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, sessionPayload{SessionID: session.ID(), User: session.User(), Token: session.Token()}, nil)
}
