package response

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/models"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

// Headers describing a failed request next to the JSON error body.
const (
	HeaderErrorCode      = "X-Error-Code"
	HeaderUpstreamStatus = "X-Upstream-Status"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends the error envelope. The error code is mirrored in a header, and
// backend rejections also carry the status the backend answered with.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.Header(HeaderErrorCode, appErr.Code)
	if appErr.UpstreamStatus != 0 {
		c.Header(HeaderUpstreamStatus, strconv.Itoa(appErr.UpstreamStatus))
	}
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Attachment sends data as a download named filename. Names outside ASCII,
// such as Arabic resource titles, get an RFC 5987 filename* parameter.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", ContentDisposition(filename))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, contentType, data)
}

// ContentDisposition builds an attachment header value for filename.
func ContentDisposition(filename string) string {
	ascii := asciiFallback(filename)
	value := fmt.Sprintf("attachment; filename=%q", ascii)
	if ascii != filename {
		value += "; filename*=UTF-8''" + url.PathEscape(filename)
	}
	return value
}

func asciiFallback(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '"' || r == '\\' || r < 0x20 || r > 0x7e {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
