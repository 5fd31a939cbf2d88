package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/middleware"
	"github.com/A7maad1/LSA/internal/models"
)

func sessionUser(c *gin.Context) *models.SessionUser {
	session := middleware.SessionFrom(c)
	if session == nil {
		return nil
	}
	return session.User()
}
