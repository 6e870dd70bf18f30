// Package daemon composes the blast background process: snapshot store,
// backend client, activity outbox and the periodic sync engine, wired
// together with fx providers and lifecycle hooks.
package daemon

import (
	"context"
	"time"

	"github.com/wablast/blast/internal/backend"
	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/config"
	"github.com/wablast/blast/internal/lock"
	"github.com/wablast/blast/internal/logging"
	"github.com/wablast/blast/internal/outbox"
	"github.com/wablast/blast/internal/profile"
	"github.com/wablast/blast/internal/snapshot"
	"github.com/wablast/blast/internal/status"
	"github.com/wablast/blast/internal/store"
	intsync "github.com/wablast/blast/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
	// SyncInterval overrides the background refresh period; zero keeps
	// the default.
	SyncInterval time.Duration
}

// Module returns the fx module for the daemon, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStatusSet,
			provideConfig,
			provideLock,
			provideSnapshot,
			provideBackend,
			provideQueue,
			provideSender,
			provideStore,
			provideSyncEngine,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStatusSet(b *bus.Bus) *status.Set {
	return status.NewSet(b)
}

func provideConfig() (*config.Config, error) {
	return config.Load(profile.ConfigPath())
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(profile.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideSnapshot(p Params, logger *zap.Logger) (*snapshot.DB, error) {
	dbPath := profile.DBPath(p.ProfileName)
	db, err := snapshot.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("snapshot store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideBackend(cfg *config.Config) *backend.Client {
	return backend.New(cfg.APIURL, cfg.SocketURL)
}

func provideQueue(db *snapshot.DB, logger *zap.Logger) *outbox.Queue {
	return outbox.NewQueue(db, logger)
}

func provideSender(db *snapshot.DB, api *backend.Client, b *bus.Bus, logger *zap.Logger) *outbox.Sender {
	return outbox.NewSender(db, api, b, logger, 0)
}

func provideStore(api *backend.Client, b *bus.Bus, st *status.Set, db *snapshot.DB, q *outbox.Queue, logger *zap.Logger) *store.Store {
	return store.New(api, b, st, logger,
		store.WithAuditor(q),
		store.WithSaver(db),
	)
}

func provideSyncEngine(p Params, s *store.Store, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *intsync.Engine {
	var opts []intsync.Option
	if p.SyncInterval > 0 {
		opts = append(opts, intsync.WithInterval(p.SyncInterval))
	}
	return intsync.NewEngine(s, b, cfg.UserEmail, logger, opts...)
}

func registerLifecycle(lc fx.Lifecycle, s *store.Store, db *snapshot.DB, lk *lock.Lock, engine *intsync.Engine, sender *outbox.Sender, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			state, err := db.Load()
			if err != nil {
				logger.Warn("snapshot restore failed", zap.Error(err))
			} else {
				s.Restore(state)
				logger.Info("snapshot restored",
					zap.Int("contacts", len(state.Contacts)),
					zap.Int("labels", len(state.Labels)))
			}
			if cfg.UserEmail != "" {
				s.SetUserEmail(cfg.UserEmail)
			}

			sender.Start(context.Background())
			engine.Start(context.Background())
			logger.Info("daemon started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			engine.Stop()
			sender.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing snapshot store", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
