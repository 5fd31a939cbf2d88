package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/repository"
)

type digestRecorder struct {
	digests []Digest
}

func (d *digestRecorder) SendDigest(_ context.Context, digest Digest) error {
	d.digests = append(d.digests, digest)
	return nil
}

type countingPurger struct {
	n   int64
	err error
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	return p.n, p.err
}

func TestBuildAndSendDigest(t *testing.T) {
	backend, tables := newTestTables()
	backend.Seed(repository.TableContacts,
		map[string]interface{}{"id": 1, "name": "a", "email": "a@b.ma", "subject": "s", "message": "m", "is_read": false},
		map[string]interface{}{"id": 2, "name": "b", "email": "b@b.ma", "subject": "s", "message": "m", "is_read": true},
	)
	backend.Seed(repository.TableCertificates,
		map[string]interface{}{"id": 3, "first_name": "a", "last_name": "b", "massar_number": "12345678901", "submission_date": "2026-01-01", "status": "pending"},
	)
	backend.Seed(repository.TableMeetings,
		map[string]interface{}{"id": 4, "subject": "parents", "meeting_date": "2026-03-05T10:00:00"},
	)

	meetings := NewMeetingService(tables.Meetings, nil, nil, nil, nil)
	meetings.now = func() time.Time { return time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC) }
	recorder := &digestRecorder{}
	svc := NewReportService(
		NewContactService(tables.Contacts, nil, nil, nil, nil),
		NewCertificateService(tables.Certificates, nil, nil, nil, nil),
		meetings, recorder, nil, ReportConfig{Site: "LSA"}, nil,
	)

	require.NoError(t, svc.SendDigest(context.Background()))
	require.Len(t, recorder.digests, 1)
	digest := recorder.digests[0]
	assert.Equal(t, 1, digest.UnreadMessages)
	assert.Equal(t, 1, digest.PendingCertificates)
	require.Len(t, digest.UpcomingMeetings, 1)
	assert.Equal(t, "parents", digest.UpcomingMeetings[0].Subject)
}

func TestBuildDigestFailsOnBackendError(t *testing.T) {
	backend, tables := newTestTables()
	backend.Fail = errors.New("down")
	svc := NewReportService(
		NewContactService(tables.Contacts, nil, nil, nil, nil),
		NewCertificateService(tables.Certificates, nil, nil, nil, nil),
		NewMeetingService(tables.Meetings, nil, nil, nil, nil), &digestRecorder{}, nil, ReportConfig{}, nil,
	)
	_, err := svc.BuildDigest(context.Background())
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	svc := NewReportService(nil, nil, nil, &digestRecorder{}, &countingPurger{}, ReportConfig{DigestSchedule: "every day"}, nil)
	assert.Error(t, svc.Start())

	svc = NewReportService(nil, nil, nil, &digestRecorder{}, &countingPurger{n: 2}, ReportConfig{DigestSchedule: "0 7 * * *", PurgeSchedule: "@hourly"}, nil)
	require.NoError(t, svc.Start())
	svc.Stop()
	require.NoError(t, svc.purge(context.Background()))
}
