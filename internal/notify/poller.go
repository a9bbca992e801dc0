// Package notify keeps an in-memory snapshot of the user's unread
// notifications fresh by polling the platform on an interval.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/observability"
)

// markReadConcurrency bounds parallel per-notification updates so a big
// backlog does not flood the platform.
const markReadConcurrency = 5

// Source is the slice of the platform the poller needs.
type Source interface {
	ListUnread(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Poller polls for unread notifications and serves the latest snapshot.
// A failed poll keeps the previous snapshot rather than blanking it.
type Poller struct {
	source   Source
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu     sync.RWMutex
	unread []domain.Notification
	ready  bool
}

// New creates a Poller. It does nothing until Run is called.
func New(source Source, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		metrics:  metrics,
	}
}

// SetClock swaps the time source for the poll loop.
func (p *Poller) SetClock(c clockwork.Clock) {
	p.clock = c
}

// Run polls immediately, then on every tick until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("notification poller started", "interval", p.interval)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	p.poll(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification poller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	unread, err := p.source.ListUnread(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("notification poll failed, keeping previous snapshot", "error", err)
		return
	}

	p.mu.Lock()
	p.unread = unread
	p.ready = true
	p.mu.Unlock()

	p.metrics.NotificationsUnread.Set(float64(len(unread)))
}

// CheckReadiness returns nil once at least one poll has succeeded.
func (p *Poller) CheckReadiness(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.ready {
		return errors.New("no successful notification poll yet")
	}
	return nil
}

// Unread returns a copy of the latest snapshot.
func (p *Poller) Unread() []domain.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.Notification, len(p.unread))
	copy(out, p.unread)
	return out
}

// MarkAllRead flags every snapshot notification as read, then re-polls so
// the snapshot reflects the platform's view.
func (p *Poller) MarkAllRead(ctx context.Context) error {
	unread := p.Unread()
	if len(unread) == 0 {
		return nil
	}

	// A plain group so one failed update does not cancel the others.
	var g errgroup.Group
	g.SetLimit(markReadConcurrency)
	for _, n := range unread {
		g.Go(func() error {
			return p.source.MarkRead(ctx, n.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.poll(ctx)
	return nil
}

// PlatformSource adapts the platform client to the Source interface.
type PlatformSource struct {
	Client interface {
		ListUnreadNotifications(ctx context.Context) ([]domain.Notification, error)
		MarkNotificationRead(ctx context.Context, id string) error
	}
}

func (s PlatformSource) ListUnread(ctx context.Context) ([]domain.Notification, error) {
	return s.Client.ListUnreadNotifications(ctx)
}

func (s PlatformSource) MarkRead(ctx context.Context, id string) error {
	return s.Client.MarkNotificationRead(ctx, id)
}
