package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/storage"
)

func TestActivityCreateListDelete(t *testing.T) {
	backend, tables := newTestTables()
	cacheRepo := newMemCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewActivityService(tables.Activities, nil, cache, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.ActivityInput{Title: "Journée sportive", Description: "Tournoi", Date: "2026-03-01"})
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// served from cache
	_, err = svc.List(ctx)
	require.NoError(t, err)
	gets := 0
	for _, call := range backend.Calls() {
		if call.Method == http.MethodGet {
			gets++
		}
	}
	assert.Equal(t, 1, gets)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	assert.Contains(t, cacheRepo.deleted, "table:activities:*")

	rows, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestActivityCreateValidates(t *testing.T) {
	backend, tables := newTestTables()
	svc := NewActivityService(tables.Activities, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.ActivityInput{Title: "x", Date: "01/03/2026"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "date (isodate)")
	assert.Empty(t, backend.Calls())
}

func TestActivityCreateTruncatesLongTitle(t *testing.T) {
	_, tables := newTestTables()
	svc := NewActivityService(tables.Activities, nil, nil, nil, nil)

	created, err := svc.Create(context.Background(), models.ActivityInput{Title: strings.Repeat("a", 300), Description: "d"})
	require.NoError(t, err)
	assert.Len(t, created.Title, 255)
}

func TestActivityUpdatePatchesGivenFields(t *testing.T) {
	backend, tables := newTestTables()
	backend.Seed(repository.TableActivities, map[string]interface{}{"id": 3, "title": "old", "description": "keep"})
	svc := NewActivityService(tables.Activities, nil, nil, nil, nil)

	updated, err := svc.Update(context.Background(), "3", models.ActivityPatch{Title: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "keep", updated.Description)
}

func TestActivityCreateWithImageCleansUpOnFailure(t *testing.T) {
	backend, tables := newTestTables()
	backend.Fail = appErrors.Backend(http.StatusInternalServerError, "insert failed")
	store := &fakeStore{}
	svc := NewActivityService(tables.Activities, NewUploadService(store, nil, nil, nil), nil, nil, nil)

	_, err := svc.CreateWithImage(context.Background(), models.ActivityInput{Title: "t", Description: "d"}, storage.File{Name: "p.png", Data: []byte{1, 2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackend))
	require.Len(t, store.deleted, 1)
	assert.True(t, strings.HasPrefix(store.deleted[0], "activities/"))
}

func TestActivityCreateWithImageStoresURL(t *testing.T) {
	_, tables := newTestTables()
	store := &fakeStore{}
	svc := NewActivityService(tables.Activities, NewUploadService(store, nil, nil, nil), nil, nil, nil)

	created, err := svc.CreateWithImage(context.Background(), models.ActivityInput{Title: "t", Description: "d"}, storage.File{Name: "p.png", Data: []byte{1, 2}})
	require.NoError(t, err)
	require.NotNil(t, created.ImageURL)
	assert.Contains(t, *created.ImageURL, "/activities/")
	assert.Empty(t, store.deleted)
}

func TestAnnouncementDefaultsCategory(t *testing.T) {
	_, tables := newTestTables()
	svc := NewAnnouncementService(tables.Announcements, nil, nil, nil, nil)

	created, err := svc.Create(context.Background(), models.AnnouncementInput{Title: "Rentrée", Content: "Bienvenue", Category: "  "})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAnnouncementCategory, created.Category)
	assert.Contains(t, svc.Categories(), "امتحانات")
}

func TestAnnouncementAttachmentGoesToAnnouncementsBucket(t *testing.T) {
	_, tables := newTestTables()
	store := &fakeStore{}
	svc := NewAnnouncementService(tables.Announcements, NewUploadService(store, &fakeCompressor{}, nil, nil), nil, nil, nil)

	created, err := svc.CreateWithAttachment(context.Background(), models.AnnouncementInput{Title: "t", Content: "c"}, storage.File{Name: "memo.jpg", Data: make([]byte, 8)})
	require.NoError(t, err)
	require.NotNil(t, created.FileURL)
	assert.Contains(t, *created.FileURL, "/announcements/")
	assert.Len(t, store.uploaded[0].Data, 8)
}

func TestGalleryReorderPatchesEachItem(t *testing.T) {
	backend, tables := newTestTables()
	backend.Seed(repository.TableGallery,
		map[string]interface{}{"id": 1, "title": "a", "image_url": "u", "order_index": 0},
		map[string]interface{}{"id": 2, "title": "b", "image_url": "u", "order_index": 1},
	)
	svc := NewGalleryService(tables.Gallery, nil, nil, nil, nil)

	require.NoError(t, svc.Reorder(context.Background(), []models.GalleryOrder{{ID: "1", OrderIndex: 1}, {ID: "2", OrderIndex: 0}}))

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Title)

	err = svc.Reorder(context.Background(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestGalleryCreateRequiresImage(t *testing.T) {
	backend, tables := newTestTables()
	svc := NewGalleryService(tables.Gallery, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.GalleryInput{Title: "t"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, backend.Calls())
}

func TestCertificateCreateIsPending(t *testing.T) {
	backend, tables := newTestTables()
	notifier := &recordingNotifier{}
	svc := NewCertificateService(tables.Certificates, notifier, nil, nil, nil)

	created, err := svc.Create(context.Background(), models.CertificateInput{
		FirstName: "Yassine", LastName: "Amrani", MassarNumber: "12345678901", SubmissionDate: "2026-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CertificatePending, created.Status)
	assert.Equal(t, "Yassine Amrani", created.FullName())
	require.Len(t, notifier.certificates, 1)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(backend.Calls()[0].Body, &sent))
	assert.Equal(t, "pending", sent["status"])
}

func TestCertificateMissingMassarFailsBeforeNetwork(t *testing.T) {
	backend, tables := newTestTables()
	svc := NewCertificateService(tables.Certificates, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.CertificateInput{FirstName: "a", LastName: "b", SubmissionDate: "2026-02-01"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "massar_number")

	_, err = svc.Create(context.Background(), models.CertificateInput{FirstName: "a", LastName: "b", MassarNumber: "123", SubmissionDate: "2026-02-01"})
	assert.Contains(t, err.Error(), "massar_number (massar)")
	assert.Empty(t, backend.Calls())
}

func TestCertificateUpdateStatus(t *testing.T) {
	backend, tables := newTestTables()
	backend.Seed(repository.TableCertificates, map[string]interface{}{
		"id": 5, "first_name": "a", "last_name": "b", "massar_number": "12345678901", "submission_date": "2026-01-01", "status": "completed",
	})
	svc := NewCertificateService(tables.Certificates, nil, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "5", models.CertificateStatusUpdate{Status: "archived"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, backend.Calls())

	updated, err := svc.UpdateStatus(context.Background(), "5", models.CertificateStatusUpdate{Status: models.CertificatePending, Notes: strPtr("reopened")})
	require.NoError(t, err)
	assert.Equal(t, models.CertificatePending, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "reopened", *updated.Notes)
}

func TestSummarizeCertificates(t *testing.T) {
	stats := SummarizeCertificates([]models.CertificateRequest{
		{Status: models.CertificatePending}, {Status: models.CertificateCompleted}, {Status: models.CertificateCompleted},
	})
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 0, stats.ByStatus[models.CertificateRejected])
}

func TestContactMarkAsReadSendsSinglePatch(t *testing.T) {
	backend, tables := newTestTables()
	svc := NewContactService(tables.Contacts, nil, nil, nil, nil)

	require.NoError(t, svc.MarkAsRead(context.Background(), "42"))

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPatch, calls[0].Method)
	assert.Equal(t, "eq.42", calls[0].Query.Get("id"))
	assert.JSONEq(t, `{"is_read":true}`, string(calls[0].Body))
}

func TestContactCreateAndUnreadCount(t *testing.T) {
	_, tables := newTestTables()
	notifier := &recordingNotifier{}
	svc := NewContactService(tables.Contacts, notifier, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ContactInput{Name: "Sara", Email: "not-an-email", Subject: "s", Message: "m"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	first, err := svc.Create(ctx, models.ContactInput{Name: "Sara", Email: "sara@example.ma", Phone: "+212 612 345 678", Subject: "s", Message: "m"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.ContactInput{Name: "Omar", Email: "omar@example.ma", Subject: "s", Message: "m"})
	require.NoError(t, err)
	require.Len(t, notifier.contacts, 2)

	require.NoError(t, svc.MarkAsRead(ctx, first.ID.String()))
	n, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListErrorsAreTyped(t *testing.T) {
	backend, tables := newTestTables()
	backend.Fail = appErrors.Clone(appErrors.ErrTimeout, "")
	svc := NewContactService(tables.Contacts, nil, nil, nil, nil)

	_, err := svc.List(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrTimeout))
}
