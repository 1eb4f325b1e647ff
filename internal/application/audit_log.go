package application

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/domain/entity"
	"github.com/oksasatya/agency-identity/internal/domain/repository"
	"github.com/oksasatya/agency-identity/pkg/obs"
)

// Auditor records authentication attempts. Record never blocks and never
// fails the caller.
type Auditor interface {
	Record(ctx context.Context, e entity.AuditEvent)
}

const auditWriteTimeout = 5 * time.Second

// AuditLog writes events from a buffered channel on a single goroutine.
// When the buffer is full the event is dropped and counted.
type AuditLog struct {
	repo    repository.AuditRepository
	logger  *logrus.Logger
	metrics *obs.Metrics
	now     Clock

	mu     sync.RWMutex
	closed bool
	events chan entity.AuditEvent
	done   chan struct{}
}

func NewAuditLog(repo repository.AuditRepository, logger *logrus.Logger, metrics *obs.Metrics, buffer int) *AuditLog {
	if buffer <= 0 {
		buffer = 1
	}
	a := &AuditLog{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
		events:  make(chan entity.AuditEvent, buffer),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AuditLog) Record(_ context.Context, e entity.AuditEvent) {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now().UTC()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.drop(e, "audit log closed")
		return
	}
	select {
	case a.events <- e:
	default:
		a.drop(e, "audit buffer full")
	}
}

func (a *AuditLog) drop(e entity.AuditEvent, reason string) {
	a.metrics.AuditDropped()
	a.logger.WithFields(logrus.Fields{"event_id": e.ID, "status": e.Status, "method": e.Method}).Warn(reason)
}

func (a *AuditLog) run() {
	defer close(a.done)
	for e := range a.events {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		if err := a.repo.Insert(ctx, e); err != nil {
			a.metrics.AuditDropped()
			a.logger.WithError(err).WithField("event_id", e.ID).Error("audit insert failed")
		}
		cancel()
	}
}

// Close stops intake and waits for buffered events to be written or ctx to
// end.
func (a *AuditLog) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Auditor = (*AuditLog)(nil)
