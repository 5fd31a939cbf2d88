package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/A7maad1/LSA/internal/handler"
	"github.com/A7maad1/LSA/internal/models"
	"github.com/A7maad1/LSA/internal/repository"
	"github.com/A7maad1/LSA/internal/service"
	"github.com/A7maad1/LSA/pkg/cache"
	"github.com/A7maad1/LSA/pkg/config"
	"github.com/A7maad1/LSA/pkg/database"
	"github.com/A7maad1/LSA/pkg/imaging"
	"github.com/A7maad1/LSA/pkg/mailer"
	"github.com/A7maad1/LSA/pkg/restclient"
	"github.com/A7maad1/LSA/pkg/storage"
)

type backendClient interface {
	REST(ctx context.Context, method, resource string, query url.Values, body interface{}) (*restclient.Response, error)
	RPC(ctx context.Context, fn string, args interface{}) (*restclient.Response, error)
}

type application struct {
	handlers     handler.Handlers
	sessions     *service.SessionFactory
	metrics      *service.MetricsService
	localUploads string
	backendKind  string
	closers      []func()
}

// Close stops background work and releases connections in reverse order.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	app := &application{metrics: service.NewMetricsService()}
	checks := map[string]handler.ReadinessCheck{}
	validate := service.NewValidator()

	var (
		backend backendClient
		client  *restclient.Client
	)
	if cfg.Backend.URL == "" {
		memory := repository.NewMemoryBackend()
		if cfg.Backend.DevAdminPassword != "" {
			memory.Seed(repository.UsersTable, map[string]interface{}{
				"email": cfg.Backend.DevAdminEmail, "password": cfg.Backend.DevAdminPassword,
				"role": models.RoleAdmin, "full_name": "Administrator",
			})
		}
		backend = memory
		app.backendKind = "memory"
		logr.Warn("SUPABASE_URL is empty; serving from an in-memory backend")
	} else {
		client = restclient.New(restclient.Config{
			BaseURL:   cfg.Backend.URL,
			APIKey:    cfg.Backend.AnonKey,
			Timeout:   cfg.Backend.Timeout,
			RateLimit: cfg.Backend.RateLimit,
			RateBurst: cfg.Backend.RateBurst,
		}, restclient.WithLogger(logr), restclient.WithObserver(app.metrics.ObserveBackendCall))
		backend = client
		app.backendKind = "remote"
		checks["backend"] = func(ctx context.Context) error {
			_, err := backend.REST(ctx, http.MethodGet, repository.TableActivities, url.Values{"select": {"id"}, "limit": {"1"}}, nil)
			return err
		}
	}

	tables := repository.NewTables(backend, logr).WithRetry(restclient.RetryPolicy{
		Attempts: cfg.Backend.RetryAttempts,
		Delay:    cfg.Backend.RetryDelay,
	})

	var redisClient *redis.Client
	needRedis := cfg.Cache.Enabled || cfg.Session.Store == config.SessionStoreRedis
	if needRedis {
		rc, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		redisClient = rc
		app.closers = append(app.closers, func() { _ = rc.Close() })
		checks["redis"] = cache.Check(rc)
	}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, app.metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	bucket, localDir, err := newBucket(cfg, client)
	if err != nil {
		return nil, err
	}
	app.localUploads = localDir
	uploader := storage.NewUploader(bucket, cfg.Upload.MaxFileSize)
	compressor := imaging.NewCompressor(cfg.Image.MaxWidth, cfg.Image.MaxHeight, cfg.Image.Quality)
	uploads := service.NewUploadService(uploader, compressor, app.metrics, logr)

	var sender mailer.Sender = mailer.NewLogSender(logr)
	if cfg.Notifications.ResendAPIKey != "" {
		sender = mailer.NewResendSender(cfg.Notifications.ResendAPIKey, cfg.Notifications.From, logr)
	}
	notifications := service.NewNotificationService(sender, service.NotificationConfig{
		Enabled:    cfg.Notifications.Enabled,
		AdminEmail: cfg.Notifications.AdminEmail,
		Workers:    cfg.Notifications.Workers,
		Retries:    cfg.Notifications.Retries,
		RetryDelay: 2 * time.Second,
	}, app.metrics, logr)
	notifications.Start(ctx)
	app.closers = append(app.closers, notifications.Stop)

	activities := service.NewActivityService(tables.Activities, uploads, cacheSvc, validate, logr)
	announcements := service.NewAnnouncementService(tables.Announcements, uploads, cacheSvc, validate, logr)
	gallery := service.NewGalleryService(tables.Gallery, uploads, cacheSvc, validate, logr)
	certificates := service.NewCertificateService(tables.Certificates, notifications, cacheSvc, validate, logr)
	contacts := service.NewContactService(tables.Contacts, notifications, cacheSvc, validate, logr)
	meetings := service.NewMeetingService(tables.Meetings, cacheSvc, validate, logr, nil)

	kv, purger, err := newSessionStore(ctx, cfg, redisClient, app, checks)
	if err != nil {
		return nil, err
	}
	app.sessions = service.NewSessionFactory(
		service.NewRPCAuthenticator(backend), kv,
		service.NewJWTSigner(cfg.Session.Secret, cfg.Session.TTL, cfg.SiteName),
		validate, logr,
	)

	digestSchedule := ""
	if cfg.Notifications.EmailReports {
		digestSchedule = cfg.Notifications.ReportSchedule
	}
	reports := service.NewReportService(contacts, certificates, meetings, notifications, purger, service.ReportConfig{
		Site:           cfg.SiteName,
		DigestSchedule: digestSchedule,
		PurgeSchedule:  purgeSchedule(purger),
		Timeout:        time.Minute,
	}, logr)
	if err := reports.Start(); err != nil {
		return nil, fmt.Errorf("start scheduler: %w", err)
	}
	app.closers = append(app.closers, reports.Stop)

	exports := service.NewExportService(logr)
	exports.Register("activities", service.ListSource(activities.List, service.ActivitiesDataset))
	exports.Register("announcements", service.ListSource(announcements.List, service.AnnouncementsDataset))
	exports.Register("gallery", service.ListSource(gallery.List, service.GalleryDataset))
	exports.Register("certificates", service.ListSource(certificates.List, service.CertificatesDataset))
	exports.Register("contacts", service.ListSource(contacts.List, service.ContactsDataset))
	exports.Register("meetings", service.ListSource(meetings.List, service.MeetingsDataset))

	render, err := handler.NewRenderer(cfg.SiteName, logr)
	if err != nil {
		return nil, err
	}

	app.handlers = handler.Handlers{
		Public: handler.NewPublicHandler(handler.PublicDeps{
			Activities:    activities,
			Announcements: announcements,
			Gallery:       gallery,
			Meetings:      meetings,
			Contacts:      contacts,
			Certificates:  certificates,
		}, render, cfg.PageSize, logr),
		Admin: handler.NewAdminPageHandler(handler.AdminDeps{
			Activities:    activities,
			Announcements: announcements,
			Gallery:       gallery,
			Certificates:  certificates,
			Contacts:      contacts,
			Meetings:      meetings,
			Deleters: map[string]handler.Deleter{
				"activities":    activities,
				"announcements": announcements,
				"gallery":       gallery,
				"certificates":  certificates,
				"contacts":      contacts,
				"meetings":      meetings,
			},
		}, render, logr),
		Session:       handler.NewSessionHandler(),
		Activities:    handler.NewActivityHandler(activities, uploads.MaxSize()),
		Announcements: handler.NewAnnouncementHandler(announcements, uploads.MaxSize()),
		Gallery:       handler.NewGalleryHandler(gallery, uploads.MaxSize()),
		Certificates:  handler.NewCertificateHandler(certificates),
		Contacts:      handler.NewContactHandler(contacts),
		Meetings:      handler.NewMeetingHandler(meetings),
		Uploads:       handler.NewUploadHandler(uploads),
		Export:        handler.NewExportHandler(exports),
		Metrics:       handler.NewMetricsHandler(app.metrics, checks),
	}
	return app, nil
}

func newBucket(cfg *config.Config, client *restclient.Client) (storage.Bucket, string, error) {
	if cfg.Upload.Driver == config.StorageRemote && client != nil {
		return storage.NewRemoteStore(client, cfg.Upload.Timeout), "", nil
	}
	local, err := storage.NewLocalStorage(cfg.Upload.LocalDir, cfg.Upload.PublicBase)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func newSessionStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, app *application, checks map[string]handler.ReadinessCheck) (repository.KVStore, sessionPurger, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		return repository.NewRedisKV(redisClient, cfg.Session.TTL), nil, nil
	case config.SessionStoreSQLite:
		db, err := database.NewSQLite(cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session database: %w", err)
		}
		app.closers = append(app.closers, func() { _ = db.Close() })
		kv := repository.NewSQLiteKV(db, cfg.Session.TTL)
		if err := kv.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate session database: %w", err)
		}
		checks["sessions"] = pingDB(db)
		return kv, kv, nil
	default:
		return repository.NewMemoryKV(cfg.Session.TTL), nil, nil
	}
}

func pingDB(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

func purgeSchedule(p sessionPurger) string {
	if p == nil {
		return ""
	}
	return "@hourly"
}
