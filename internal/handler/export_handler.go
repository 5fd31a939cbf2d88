package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/A7maad1/LSA/internal/service"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/export"
	"github.com/A7maad1/LSA/pkg/response"
)

type exporter interface {
	Resources() []string
	Export(ctx context.Context, resource string, format export.Format) (*service.ExportFile, error)
}

// ExportHandler serves admin listings as downloads.
type ExportHandler struct {
	service exporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exporter) *ExportHandler {
	return &ExportHandler{service: service}
}

// Resources godoc
// @Summary List exportable resources
// @Tags Export
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/export [get]
func (h *ExportHandler) Resources(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Resources(), nil)
}

// Export godoc
// @Summary Download a resource export
// @Tags Export
// @Produce text/csv,application/json,application/pdf
// @Param resource path string true "Resource"
// @Param format query string false "csv, json or pdf" default(csv)
// @Success 200 {file} file
// @Router /admin/export/{resource} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("resource"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Data)
}
