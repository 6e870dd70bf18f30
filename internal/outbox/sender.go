package outbox

import (
	"context"
	"time"

	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/snapshot"
	"go.uber.org/zap"
)

// ActivityPoster delivers one audit entry to the backend.
type ActivityPoster interface {
	LogActivity(ctx context.Context, userEmail, action string) error
}

// Sender drains the activity outbox to the backend.
type Sender struct {
	db     *snapshot.DB
	poster ActivityPoster
	bus    *bus.Bus
	logger *zap.Logger
	every  time.Duration
	cancel context.CancelFunc
}

// NewSender creates an outbox sender polling at the given interval.
func NewSender(db *snapshot.DB, poster ActivityPoster, b *bus.Bus, logger *zap.Logger, every time.Duration) *Sender {
	if every <= 0 {
		every = 2 * time.Second
	}
	return &Sender{db: db, poster: poster, bus: b, logger: logger, every: every}
}

// Start begins polling the outbox for queued entries.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop stops the sender loop.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Sender) loop(ctx context.Context) {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.DrainOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// DrainOnce attempts delivery of every queued entry.
func (s *Sender) DrainOnce(ctx context.Context) {
	pending, err := s.db.PendingActivities()
	if err != nil {
		s.logger.Error("failed to read activity outbox", zap.Error(err))
		return
	}

	for _, entry := range pending {
		if err := s.poster.LogActivity(ctx, entry.UserEmail, entry.Action); err != nil {
			s.logger.Warn("activity delivery failed", zap.Error(err), zap.String("activity_id", entry.ID))
			if err := s.db.MarkActivityFailed(entry.ID, err.Error()); err != nil {
				s.logger.Error("failed to mark activity failed", zap.Error(err), zap.String("activity_id", entry.ID))
			}
			continue
		}
		if err := s.db.MarkActivitySent(entry.ID); err != nil {
			s.logger.Error("failed to mark activity sent", zap.Error(err), zap.String("activity_id", entry.ID))
		}
		if s.bus != nil {
			s.bus.Publish(bus.Event{
				Kind:    "activity.logged",
				Payload: map[string]string{"activity_id": entry.ID, "action": entry.Action},
			})
		}
	}
}
