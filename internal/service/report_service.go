package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/models"
)

type contactLister interface {
	List(ctx context.Context) ([]models.ContactMessage, error)
}

type certificateLister interface {
	List(ctx context.Context) ([]models.CertificateRequest, error)
}

type scheduleReader interface {
	Upcoming(ctx context.Context) ([]MeetingView, error)
}

type digestSender interface {
	SendDigest(ctx context.Context, digest Digest) error
}

type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ReportConfig configures scheduled work.
type ReportConfig struct {
	Site string
	// DigestSchedule is a five-field cron spec; empty disables the digest.
	DigestSchedule string
	// PurgeSchedule controls expired-session cleanup; empty disables it.
	PurgeSchedule string
	Timeout       time.Duration
}

// ReportService runs the daily admin digest and session cleanup on a cron schedule.
type ReportService struct {
	contacts     contactLister
	certificates certificateLister
	meetings     scheduleReader
	sender       digestSender
	purger       expiredPurger
	cron         *cron.Cron
	cfg          ReportConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService constructs the service. purger may be nil.
func NewReportService(contacts contactLister, certificates certificateLister, meetings scheduleReader, sender digestSender, purger expiredPurger, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &ReportService{
		contacts:     contacts,
		certificates: certificates,
		meetings:     meetings,
		sender:       sender,
		purger:       purger,
		cron:         cron.New(),
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Start registers the configured jobs and starts the scheduler.
func (s *ReportService) Start() error {
	if s.cfg.DigestSchedule != "" && s.sender != nil {
		if _, err := s.cron.AddFunc(s.cfg.DigestSchedule, s.run("digest", s.SendDigest)); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	if s.cfg.PurgeSchedule != "" && s.purger != nil {
		if _, err := s.cron.AddFunc(s.cfg.PurgeSchedule, s.run("session purge", s.purge)); err != nil {
			return fmt.Errorf("schedule session purge: %w", err)
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop waits for running jobs to finish.
func (s *ReportService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// BuildDigest collects the figures for the admin digest.
func (s *ReportService) BuildDigest(ctx context.Context) (Digest, error) {
	digest := Digest{Site: s.cfg.Site, GeneratedAt: s.now().UTC()}

	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return digest, fmt.Errorf("digest contacts: %w", err)
	}
	digest.UnreadMessages = countUnread(contacts)

	requests, err := s.certificates.List(ctx)
	if err != nil {
		return digest, fmt.Errorf("digest certificates: %w", err)
	}
	digest.PendingCertificates = SummarizeCertificates(requests).ByStatus[models.CertificatePending]

	upcoming, err := s.meetings.Upcoming(ctx)
	if err != nil {
		return digest, fmt.Errorf("digest meetings: %w", err)
	}
	digest.UpcomingMeetings = upcoming
	return digest, nil
}

// SendDigest builds and sends the digest.
func (s *ReportService) SendDigest(ctx context.Context) error {
	digest, err := s.BuildDigest(ctx)
	if err != nil {
		return err
	}
	return s.sender.SendDigest(ctx, digest)
}

func (s *ReportService) purge(ctx context.Context) error {
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("rows", n))
	}
	return nil
}

func (s *ReportService) run(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	}
}
