// Package jobs runs typed background work, such as admin email notices, on an
// in-process worker pool.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotRunning is returned when enqueueing before Start or after Stop.
	ErrNotRunning = errors.New("queue not running")
	// ErrQueueFull is returned when the buffer has no room. Enqueue never blocks.
	ErrQueueFull = errors.New("queue full")
)

// Job is one unit of work carrying a typed payload.
type Job[T any] struct {
	ID       string
	Kind     string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. Returning an error wrapped with Permanent skips
// the remaining retries.
type Handler[T any] func(context.Context, Job[T]) error

// GiveUpFunc observes a job dropped after its last attempt.
type GiveUpFunc[T any] func(Job[T], error)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Config configures the worker pool.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	// RetryDelay is the first backoff; each further retry doubles it.
	RetryDelay time.Duration
	// DrainTimeout bounds how long Stop waits for buffered jobs.
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

const (
	stateIdle = iota
	stateRunning
	stateStopped
)

// Queue dispatches jobs of one payload type to a fixed set of workers.
type Queue[T any] struct {
	name     string
	handler  Handler[T]
	onGiveUp GiveUpFunc[T]
	cfg      Config
	logger   *zap.Logger

	jobs     chan Job[T]
	stopping chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	workers  sync.WaitGroup
	retries  sync.WaitGroup

	mu    sync.RWMutex
	state int
}

// NewQueue builds a queue. onGiveUp may be nil.
func NewQueue[T any](name string, handler Handler[T], onGiveUp GiveUpFunc[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:     name,
		handler:  handler,
		onGiveUp: onGiveUp,
		cfg:      cfg,
		logger:   cfg.Logger.With(zap.String("queue", name)),
		jobs:     make(chan Job[T], cfg.BufferSize),
		stopping: make(chan struct{}),
	}
}

// Start launches the workers. Only the first call has an effect, and a
// stopped queue cannot be restarted.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != stateIdle {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.worker()
	}
	q.state = stateRunning
	q.logger.Sugar().Infow("queue started", "workers", q.cfg.Workers)
}

// Stop refuses new jobs, lets workers finish what is buffered for up to
// DrainTimeout, then cancels in-flight handlers. Jobs waiting on a retry
// backoff are given up.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if q.state != stateRunning {
		q.mu.Unlock()
		return
	}
	q.state = stateStopped
	close(q.stopping)
	close(q.jobs)
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(drained)
	}()
	timer := time.NewTimer(q.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		q.logger.Sugar().Warnw("drain timed out, cancelling handlers", "pending", len(q.jobs))
		q.cancel()
		<-drained
	}
	q.cancel()
	q.retries.Wait()
	q.logger.Sugar().Infow("queue stopped")
}

// Enqueue adds a job of the given kind and returns its id.
func (q *Queue[T]) Enqueue(kind string, payload T) (string, error) {
	return q.push(Job[T]{Kind: kind, Payload: payload})
}

func (q *Queue[T]) push(job Job[T]) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.state != stateRunning {
		return "", fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return job.ID, nil
	default:
		return "", fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

// Pending reports how many jobs wait in the buffer.
func (q *Queue[T]) Pending() int {
	return len(q.jobs)
}

func (q *Queue[T]) worker() {
	defer q.workers.Done()
	for job := range q.jobs {
		q.run(job)
	}
}

func (q *Queue[T]) run(job Job[T]) {
	err := q.handler(q.ctx, job)
	if err == nil {
		return
	}
	if IsPermanent(err) || job.Attempt >= q.cfg.MaxRetries {
		q.giveUp(job, err)
		return
	}
	job.Attempt++
	q.logger.Sugar().Warnw("job failed, retrying", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt, "error", err)

	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(q.backoff(job.Attempt))
		defer timer.Stop()
		select {
		case <-q.stopping:
			q.giveUp(job, fmt.Errorf("%s: %w", q.name, ErrNotRunning))
		case <-timer.C:
			if _, err := q.push(job); err != nil {
				q.giveUp(job, err)
			}
		}
	}()
}

func (q *Queue[T]) giveUp(job Job[T], err error) {
	q.logger.Sugar().Errorw("job dropped", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt, "error", err)
	if q.onGiveUp != nil {
		q.onGiveUp(job, err)
	}
}

func (q *Queue[T]) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return q.cfg.RetryDelay << (attempt - 1)
}
