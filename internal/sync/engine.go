// Package sync keeps the local store aligned with the backend: a
// periodic full refresh plus on-demand refreshes requested over the bus.
package sync

import (
	"context"
	"time"

	"github.com/wablast/blast/internal/bus"
	"go.uber.org/zap"
)

// DefaultInterval is the period between background refreshes. The backend
// has no push channel for entity changes, so polling is the repair path
// for anything another client changed (and for partially applied
// cascades).
const DefaultInterval = 5 * time.Minute

// Refresher reloads both entity collections from the backend.
type Refresher interface {
	Refresh(ctx context.Context, ownerKey string) error
}

// Engine drives the periodic refresh loop. It also listens for
// "sync.refresh_requested" events so surfaces can force an immediate
// reload without holding a store reference.
type Engine struct {
	store    Refresher
	bus      *bus.Bus
	logger   *zap.Logger
	ownerKey string
	interval time.Duration
	cancel   context.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval overrides the refresh period. Used by tests.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// NewEngine creates a refresh engine for one owner.
func NewEngine(store Refresher, b *bus.Bus, ownerKey string, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		bus:      b,
		logger:   logger,
		ownerKey: ownerKey,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the refresh loop. An initial refresh runs immediately so
// the store is populated before the first tick.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("sync.", 16)

	go func() {
		defer unsub()
		e.refresh(ctx)

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.refresh(ctx)
			case evt := <-ch:
				if evt.Kind == "sync.refresh_requested" {
					e.refresh(ctx)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) refresh(ctx context.Context) {
	if e.ownerKey == "" {
		return
	}
	if err := e.store.Refresh(ctx, e.ownerKey); err != nil {
		e.logger.Error("background refresh failed", zap.Error(err))
	}
}
