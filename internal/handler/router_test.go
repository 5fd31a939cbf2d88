package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/middleware"
	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/service"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/export"
	"github.com/A7maad1/LSA/pkg/storage"
)

type activityServiceFake struct {
	listFake[models.Activity]
	created   *models.ActivityInput
	withImage *storage.File
	patched   *models.ActivityPatch
}

func (f *activityServiceFake) Get(_ context.Context, id string) (*models.Activity, error) {
	for _, a := range f.items {
		if a.ID.String() == id {
			return &a, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (f *activityServiceFake) Create(_ context.Context, input models.ActivityInput) (*models.Activity, error) {
	f.created = &input
	return &models.Activity{ID: "10", Title: input.Title}, nil
}

func (f *activityServiceFake) CreateWithImage(_ context.Context, input models.ActivityInput, image storage.File) (*models.Activity, error) {
	f.created = &input
	f.withImage = &image
	url := "https://cdn/activities/" + image.Name
	return &models.Activity{ID: "11", Title: input.Title, ImageURL: &url}, nil
}

func (f *activityServiceFake) Update(_ context.Context, id string, patch models.ActivityPatch) (*models.Activity, error) {
	f.patched = &patch
	return &models.Activity{ID: models.ID(id), Title: *patch.Title}, nil
}

func (f *activityServiceFake) UpdateImage(_ context.Context, id string, image storage.File) (*models.Activity, error) {
	f.withImage = &image
	return &models.Activity{ID: models.ID(id)}, nil
}

func (f *activityServiceFake) Delete(context.Context, string) error { return nil }

type announcementServiceFake struct {
	announcementFake
}

func (f *announcementServiceFake) Create(_ context.Context, input models.AnnouncementInput) (*models.Announcement, error) {
	return &models.Announcement{ID: "1", Title: input.Title, Category: input.Category}, nil
}

func (f *announcementServiceFake) CreateWithAttachment(_ context.Context, input models.AnnouncementInput, _ storage.File) (*models.Announcement, error) {
	return f.Create(context.Background(), input)
}

func (f *announcementServiceFake) Delete(context.Context, string) error { return nil }

type galleryServiceFake struct {
	listFake[models.GalleryItem]
	order []models.GalleryOrder
}

func (f *galleryServiceFake) Create(_ context.Context, input models.GalleryInput) (*models.GalleryItem, error) {
	return &models.GalleryItem{ID: "1", Title: input.Title, ImageURL: input.ImageURL}, nil
}

func (f *galleryServiceFake) CreateWithImage(_ context.Context, input models.GalleryInput, _ storage.File) (*models.GalleryItem, error) {
	return f.Create(context.Background(), input)
}

func (f *galleryServiceFake) Delete(context.Context, string) error { return nil }

func (f *galleryServiceFake) Reorder(_ context.Context, order []models.GalleryOrder) error {
	f.order = order
	return nil
}

type certificateServiceFake struct {
	listFake[models.CertificateRequest]
	certificateFake
	update models.CertificateStatusUpdate
}

func (f *certificateServiceFake) UpdateStatus(_ context.Context, id string, update models.CertificateStatusUpdate) (*models.CertificateRequest, error) {
	if !update.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid fields: status (certstatus)")
	}
	f.update = update
	return &models.CertificateRequest{ID: models.ID(id), Status: update.Status}, nil
}

func (f *certificateServiceFake) Delete(context.Context, string) error { return nil }

type contactServiceFake struct {
	listFake[models.ContactMessage]
	contactFake
	read []string
}

func (f *contactServiceFake) MarkAsRead(_ context.Context, id string) error {
	f.read = append(f.read, id)
	return nil
}

func (f *contactServiceFake) UnreadCount(context.Context) (int, error) { return 3, nil }

func (f *contactServiceFake) Delete(context.Context, string) error { return nil }

type meetingServiceFake struct {
	listFake[models.Meeting]
	scheduleFake
}

func (f *meetingServiceFake) Create(_ context.Context, input models.MeetingInput) (*models.Meeting, error) {
	return &models.Meeting{ID: "1", Subject: input.Subject, MeetingDate: input.MeetingDate}, nil
}

func (f *meetingServiceFake) Delete(context.Context, string) error { return nil }

type uploaderFake struct {
	maxSize int64
	deleted string
}

func (u *uploaderFake) MaxSize() int64 { return u.maxSize }

func (u *uploaderFake) Upload(_ context.Context, file storage.File, bucket string) (*storage.Object, error) {
	return &storage.Object{Bucket: bucket, Name: file.Name, Path: bucket + "/" + file.Name, Size: file.Size()}, nil
}

func (u *uploaderFake) Delete(_ context.Context, path string) error {
	u.deleted = path
	return nil
}

type exporterFake struct{}

func (exporterFake) Resources() []string { return []string{"contacts"} }

func (exporterFake) Export(_ context.Context, resource string, format export.Format) (*service.ExportFile, error) {
	if resource != "contacts" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown export resource")
	}
	return &service.ExportFile{Name: "contacts_2026-03-01." + string(format), ContentType: "text/csv; charset=utf-8", Data: []byte("name\nسارة\n")}, nil
}

type apiFixture struct {
	factory    *service.SessionFactory
	activities *activityServiceFake
	gallery    *galleryServiceFake
	certs      *certificateServiceFake
	contacts   *contactServiceFake
	uploads    *uploaderFake
	router     *gin.Engine
}

func newAPIFixture(t *testing.T, role string, checks map[string]ReadinessCheck) *apiFixture {
	t.Helper()
	admin := newAdminFixture(t, fakeAuth{role: role})
	public := newPublicFixture(t, 10)
	f := &apiFixture{
		factory:    admin.factory,
		activities: &activityServiceFake{listFake: listFake[models.Activity]{items: seedActivities(3)}},
		gallery:    &galleryServiceFake{},
		certs:      &certificateServiceFake{},
		contacts:   &contactServiceFake{},
		uploads:    &uploaderFake{maxSize: 16},
	}
	meetings := &meetingServiceFake{scheduleFake: scheduleFake{schedule: &service.MeetingSchedule{}}}
	pages := NewAdminPageHandler(AdminDeps{
		Activities:    f.activities,
		Announcements: &announcementFake{},
		Gallery:       f.gallery,
		Certificates:  &f.certs.listFake,
		Contacts:      &f.contacts.listFake,
		Meetings:      &meetings.scheduleFake,
		Deleters:      map[string]Deleter{tabActivities: f.activities},
	}, newTestRenderer(t), nil)

	f.router = gin.New()
	Register(f.router, Handlers{
		Public:        public.handler,
		Admin:         pages,
		Session:       NewSessionHandler(),
		Activities:    NewActivityHandler(f.activities, 16),
		Announcements: NewAnnouncementHandler(&announcementServiceFake{}, 16),
		Gallery:       NewGalleryHandler(f.gallery, 16),
		Certificates:  NewCertificateHandler(f.certs),
		Contacts:      NewContactHandler(f.contacts),
		Meetings:      NewMeetingHandler(meetings),
		Uploads:       NewUploadHandler(f.uploads),
		Export:        NewExportHandler(exporterFake{}),
		Metrics:       NewMetricsHandler(nil, checks),
	}, middleware.Session(f.factory, middleware.SessionConfig{}), RouteOptions{})
	return f
}

func (f *apiFixture) signIn(t *testing.T) string {
	t.Helper()
	sid := uuid.NewString()
	_, err := f.factory.For(sid).SignIn(context.Background(), "admin@lsa.ma", "pw")
	require.NoError(t, err)
	return sid
}

func (f *apiFixture) do(req *http.Request, sid string) *httptest.ResponseRecorder {
	if sid != "" {
		req.Header.Set(middleware.SessionHeader, sid)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField, fileName string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAdminAPIRequiresSessionAndRole(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/activities", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, decode(t, rec).Error.Code)

	f = newAPIFixture(t, models.RoleUser, nil)
	sid := f.signIn(t)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/activities", nil), sid)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/session", nil), sid)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminPagesRedirectWithoutSession(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin?tab=gallery", nil), "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?next=%2Fadmin%3Ftab%3Dgallery", rec.Header().Get("Location"))
}

func TestSessionLoginAndRefresh(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)

	rec := f.do(jsonRequest(http.MethodPost, "/api/v1/session/login", models.LoginRequest{Email: "admin@lsa.ma", Password: "pw"}), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload sessionPayload
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, models.RoleAdmin, payload.User.Role)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/session/refresh", nil), payload.SessionID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/v1/session/logout", nil), payload.SessionID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/session", nil), payload.SessionID)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActivityAPI(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)
	sid := f.signIn(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/activities", nil), sid)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Activity
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &items))
	assert.Len(t, items, 3)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/activities/99", nil), sid)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(jsonRequest(http.MethodPost, "/api/v1/admin/activities", models.ActivityInput{Title: "رحلة", Description: "d"}), sid)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, f.activities.withImage)

	req := multipartRequest(t, "/api/v1/admin/activities", map[string]string{"title": "معرض", "description": "d"}, "image", "a.jpg", []byte("jpeg"))
	rec = f.do(req, sid)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.activities.withImage)
	assert.Equal(t, "a.jpg", f.activities.withImage.Name)
	assert.Equal(t, "معرض", f.activities.created.Title)

	title := "جديد"
	rec = f.do(jsonRequest(http.MethodPatch, "/api/v1/admin/activities/1", models.ActivityPatch{Title: &title}), sid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "جديد", *f.activities.patched.Title)
}

func TestUploadRejectsOversizedAndUnknownBucket(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)
	sid := f.signIn(t)

	rec := f.do(multipartRequest(t, "/api/v1/admin/uploads/gallery", nil, "file", "big.png", bytes.Repeat([]byte("x"), 64)), sid)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, decode(t, rec).Error.Code)

	rec = f.do(multipartRequest(t, "/api/v1/admin/uploads/private", nil, "file", "a.png", []byte("x")), sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(multipartRequest(t, "/api/v1/admin/uploads/gallery", nil, "", "", nil), sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(multipartRequest(t, "/api/v1/admin/uploads/gallery", nil, "file", "a.png", []byte("png")), sid)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/uploads?path=gallery/a.png", nil), sid)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "gallery/a.png", f.uploads.deleted)
}

func TestSubmissionAPI(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)
	sid := f.signIn(t)

	rec := f.do(jsonRequest(http.MethodPatch, "/api/v1/admin/certificates/5/status", models.CertificateStatusUpdate{Status: models.CertificateApproved}), sid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CertificateApproved, f.certs.update.Status)

	rec = f.do(jsonRequest(http.MethodPatch, "/api/v1/admin/certificates/5/status", map[string]string{"status": "lost"}), sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/certificates/5/status", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req, sid).Code)

	rec = f.do(httptest.NewRequest(http.MethodPatch, "/api/v1/admin/contacts/8/read", nil), sid)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"8"}, f.contacts.read)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/contacts/unread-count", nil), sid)
	assert.JSONEq(t, `{"unread":3}`, string(decode(t, rec).Data))

	rec = f.do(jsonRequest(http.MethodPost, "/api/v1/contacts", models.ContactInput{Name: "سارة"}), "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "سارة", f.contacts.got.Name)

	rec = f.do(jsonRequest(http.MethodPut, "/api/v1/admin/gallery/order", []models.GalleryOrder{{ID: "1", OrderIndex: 2}}), sid)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.gallery.order, 1)
}

func TestExportAPI(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, nil)
	sid := f.signIn(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/export/contacts", nil), sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="contacts_2026-03-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "سارة")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/export/contacts?format=xml", nil), sid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/export/grades", nil), sid)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpsEndpoints(t *testing.T) {
	f := newAPIFixture(t, models.RoleAdmin, map[string]ReadinessCheck{
		"backend": func(context.Context) error { return errors.New("unreachable") },
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/ready", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unreachable")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/static/site.css", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
