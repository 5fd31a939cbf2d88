package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/pkg/jobs"
	"github.com/A7maad1/LSA/pkg/mailer"
)

type captureSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
	done chan struct{}
}

func (s *captureSender) Send(_ context.Context, msg mailer.Message) (mailer.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return mailer.Result{}, s.err
	}
	s.sent = append(s.sent, msg)
	if s.done != nil {
		s.done <- struct{}{}
	}
	return mailer.Result{MessageID: "m1", SentAt: time.Now()}, nil
}

func TestContactNoticeIsQueuedAndSent(t *testing.T) {
	sender := &captureSender{done: make(chan struct{}, 1)}
	svc := NewNotificationService(sender, NotificationConfig{Enabled: true, AdminEmail: "admin@lsa.ma"}, NewMetricsService(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.ContactReceived(ctx, &models.ContactMessage{Name: "Sara", Email: "sara@example.ma", Subject: "Inscription", Message: "<b>hi</b>"})

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@lsa.ma"}, msg.To)
	assert.Equal(t, "sara@example.ma", msg.ReplyTo)
	assert.Contains(t, msg.Subject, "Sara")
	assert.Contains(t, msg.HTML, "&lt;b&gt;hi&lt;/b&gt;")
}

func TestNotificationsDisabledWithoutAdmin(t *testing.T) {
	sender := &captureSender{}
	svc := NewNotificationService(sender, NotificationConfig{Enabled: true}, nil, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	assert.False(t, svc.Enabled())
	svc.CertificateRequested(context.Background(), &models.CertificateRequest{FirstName: "a"})
	require.NoError(t, svc.SendDigest(context.Background(), Digest{}))
	assert.Empty(t, sender.sent)
}

func TestComposeCertificateAndDigest(t *testing.T) {
	svc := NewNotificationService(&captureSender{}, NotificationConfig{Enabled: true, AdminEmail: "admin@lsa.ma"}, nil, nil)

	msg, err := svc.compose(&models.CertificateRequest{FirstName: "Yassine", LastName: "Amrani", MassarNumber: "12345678901", Status: models.CertificatePending})
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "Yassine Amrani")
	assert.Contains(t, msg.HTML, "12345678901")

	msg, err = svc.compose(Digest{
		Site: "LSA", UnreadMessages: 4, PendingCertificates: 2,
		UpcomingMeetings: []MeetingView{{Meeting: models.Meeting{Subject: "parents", MeetingDate: "2026-03-02"}}},
		GeneratedAt:      time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "LSA: 2026-03-01", msg.Subject)
	assert.Contains(t, msg.HTML, "parents")

	_, err = svc.compose(42)
	assert.Error(t, err)
}

func TestSendDigestPropagatesSenderError(t *testing.T) {
	sender := &captureSender{err: errors.New("rejected")}
	svc := NewNotificationService(sender, NotificationConfig{Enabled: true, AdminEmail: "admin@lsa.ma"}, nil, nil)

	err := svc.SendDigest(context.Background(), Digest{Site: "LSA"})
	assert.Error(t, err)
}

func TestDeliverMarksMissingRecipientPermanent(t *testing.T) {
	sender := &captureSender{err: mailer.ErrNoRecipients}
	svc := NewNotificationService(sender, NotificationConfig{Enabled: true, AdminEmail: "admin@lsa.ma"}, nil, nil)

	err := svc.deliver(context.Background(), jobs.Job[mailer.Message]{Kind: NotifyContact})
	assert.True(t, jobs.IsPermanent(err))

	sender.err = errors.New("rate limited")
	err = svc.deliver(context.Background(), jobs.Job[mailer.Message]{Kind: NotifyContact})
	require.Error(t, err)
	assert.False(t, jobs.IsPermanent(err))
}

func TestStopDeliversQueuedNotices(t *testing.T) {
	sender := &captureSender{}
	svc := NewNotificationService(sender, NotificationConfig{Enabled: true, AdminEmail: "admin@lsa.ma", Workers: 1}, nil, nil)
	svc.Start(context.Background())

	svc.ContactReceived(context.Background(), &models.ContactMessage{Name: "A", Email: "a@lsa.ma"})
	svc.CertificateRequested(context.Background(), &models.CertificateRequest{FirstName: "B", LastName: "C"})
	svc.Stop()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.sent, 2)
}
