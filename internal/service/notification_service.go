package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/pkg/jobs"
	"github.com/A7maad1/LSA/pkg/mailer"
)

// Notification kinds, used as job types and metric labels.
const (
	NotifyContact     = "contact_submission"
	NotifyCertificate = "certificate_request"
	NotifyDigest      = "daily_digest"
)

var emailTemplates = template.Must(template.New("email").Parse(`
{{define "contact"}}<h2>رسالة تواصل جديدة</h2>
<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt;{{with .Phone}} · {{.}}{{end}}</p>
<p><strong>{{.Subject}}</strong></p>
<p style="white-space:pre-wrap">{{.Message}}</p>
<p><small>{{.CreatedAt.Format "2006-01-02 15:04"}}</small></p>{{end}}
{{define "certificate"}}<h2>طلب شهادة جديد</h2>
<p>{{.FirstName}} {{.LastName}}</p>
<p>Massar: {{.MassarNumber}}</p>
<p>{{.SubmissionDate}} · {{.Status}}</p>{{end}}
{{define "digest"}}<h2>{{.Site}}: ملخص يومي</h2>
<ul>
<li>رسائل غير مقروءة: {{.UnreadMessages}}</li>
<li>طلبات شهادات قيد الانتظار: {{.PendingCertificates}}</li>
<li>اجتماعات قادمة: {{len .UpcomingMeetings}}</li>
</ul>
{{range .UpcomingMeetings}}<p>{{.Subject}} · {{.MeetingDate}}{{with .Location}} · {{.}}{{end}}</p>{{end}}{{end}}
`))

// NotificationConfig configures admin notices.
type NotificationConfig struct {
	Enabled    bool
	AdminEmail string
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// Digest is the content of the scheduled report.
type Digest struct {
	Site                string
	UnreadMessages      int
	PendingCertificates int
	UpcomingMeetings    []MeetingView
	GeneratedAt         time.Time
}

// NotificationService emails the school admin about public submissions.
// Messages are rendered when the submission arrives and delivered from a
// background queue, so submitters never wait on the mail provider.
type NotificationService struct {
	sender  mailer.Sender
	queue   *jobs.Queue[mailer.Message]
	cfg     NotificationConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the service. Call Start before use.
func NewNotificationService(sender mailer.Sender, cfg NotificationConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, cfg: cfg, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, s.dropped, jobs.Config{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Enabled reports whether notices are sent.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.cfg.AdminEmail != "" && s.sender != nil
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s.Enabled() {
		s.queue.Start(ctx)
	}
}

// Stop delivers what is already queued, then waits for the workers to exit.
func (s *NotificationService) Stop() {
	if s.Enabled() {
		s.queue.Stop()
	}
}

// ContactReceived queues a notice for a new contact message.
func (s *NotificationService) ContactReceived(_ context.Context, msg *models.ContactMessage) {
	if msg == nil {
		return
	}
	s.enqueue(NotifyContact, msg)
}

// CertificateRequested queues a notice for a new certificate request.
func (s *NotificationService) CertificateRequested(_ context.Context, req *models.CertificateRequest) {
	if req == nil {
		return
	}
	s.enqueue(NotifyCertificate, req)
}

// SendDigest sends the scheduled report synchronously.
func (s *NotificationService) SendDigest(ctx context.Context, digest Digest) error {
	if !s.Enabled() {
		return nil
	}
	msg, err := s.compose(digest)
	if err != nil {
		return err
	}
	_, err = s.sender.Send(ctx, msg)
	s.metrics.RecordEmail(NotifyDigest, err)
	return err
}

func (s *NotificationService) enqueue(kind string, payload interface{}) {
	if !s.Enabled() {
		return
	}
	msg, err := s.compose(payload)
	if err != nil {
		s.logger.Error("dropping notification", zap.String("kind", kind), zap.Error(err))
		return
	}
	if _, err := s.queue.Enqueue(kind, msg); err != nil {
		s.metrics.RecordEmail(kind, err)
		s.logger.Warn("failed to queue notification", zap.String("kind", kind), zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job[mailer.Message]) error {
	_, err := s.sender.Send(ctx, job.Payload)
	s.metrics.RecordEmail(job.Kind, err)
	if errors.Is(err, mailer.ErrNoRecipients) {
		return jobs.Permanent(err)
	}
	return err
}

func (s *NotificationService) dropped(job jobs.Job[mailer.Message], err error) {
	s.logger.Error("notification not delivered",
		zap.String("kind", job.Kind),
		zap.String("subject", job.Payload.Subject),
		zap.Int("attempts", job.Attempt+1),
		zap.Error(err),
	)
}

func (s *NotificationService) compose(payload interface{}) (mailer.Message, error) {
	msg := mailer.Message{To: []string{s.cfg.AdminEmail}}
	var name string
	switch p := payload.(type) {
	case *models.ContactMessage:
		name = "contact"
		msg.Subject = "رسالة تواصل جديدة من " + p.Name
		msg.ReplyTo = p.Email
	case *models.CertificateRequest:
		name = "certificate"
		msg.Subject = "طلب شهادة جديد من " + p.FullName()
	case Digest:
		name = "digest"
		msg.Subject = fmt.Sprintf("%s: %s", p.Site, p.GeneratedAt.Format("2006-01-02"))
	default:
		return msg, fmt.Errorf("unsupported notification payload %T", payload)
	}

	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, name, payload); err != nil {
		return msg, fmt.Errorf("render %s email: %w", name, err)
	}
	msg.HTML = body.String()
	return msg, nil
}
