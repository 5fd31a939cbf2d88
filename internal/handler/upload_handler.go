package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/response"
	"github.com/A7maad1/LSA/pkg/storage"
)

type uploader interface {
	MaxSize() int64
	Upload(ctx context.Context, file storage.File, bucket string) (*storage.Object, error)
	Delete(ctx context.Context, path string) error
}

var uploadBuckets = map[string]struct{}{
	storage.BucketGallery:       {},
	storage.BucketActivities:    {},
	storage.BucketAnnouncements: {},
}

// UploadHandler exposes raw storage uploads for the dashboard.
type UploadHandler struct {
	service uploader
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service uploader) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload godoc
// @Summary Upload a file to a bucket
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param bucket path string true "Bucket (gallery, activities, announcements)"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/uploads/{bucket} [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	bucket := c.Param("bucket")
	if _, ok := uploadBuckets[bucket]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown bucket"))
		return
	}
	file, err := readUpload(c, "file", h.service.MaxSize())
	if err != nil {
		response.Error(c, err)
		return
	}
	if file == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	obj, err := h.service.Upload(c.Request.Context(), *file, bucket)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, obj)
}

// Delete godoc
// @Summary Delete an uploaded object
// @Tags Uploads
// @Param path query string true "bucket/name"
// @Success 204
// @Router /admin/uploads [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Query("path")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// readUpload reads one multipart file. It returns nil without error when the
// field is absent. At most limit+1 bytes are read so that the size check
// downstream still sees an oversized file as oversized.
func readUpload(c *gin.Context, field string, limit int64) (*storage.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart body")
	}
	if limit > 0 && header.Size > limit {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, "")
	}
	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
	}
	defer src.Close()

	var reader io.Reader = src
	if limit > 0 {
		reader = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
	}
	return &storage.File{Name: header.Filename, ContentType: header.Header.Get("Content-Type"), Data: data}, nil
}

func isMultipart(c *gin.Context) bool {
	return c.ContentType() == "multipart/form-data"
}
