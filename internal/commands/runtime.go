package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/wablast/blast/internal/backend"
	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/config"
	"github.com/wablast/blast/internal/outbox"
	"github.com/wablast/blast/internal/profile"
	"github.com/wablast/blast/internal/snapshot"
	"github.com/wablast/blast/internal/status"
	"github.com/wablast/blast/internal/store"
	"go.uber.org/zap"
)

// env is the per-invocation runtime: config, snapshot store and a store
// restored from it.
type env struct {
	cfg    *config.Config
	db     *snapshot.DB
	api    *backend.Client
	store  *store.Store
	sender *outbox.Sender
	owner  string
}

// loadEnv builds the runtime for one command. The returned closer drains
// the audit outbox and closes the snapshot store.
func loadEnv() (*env, func(), error) {
	_ = godotenv.Load()

	name := profile.Resolve(profileFlag)
	if err := profile.ValidateName(name); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		return nil, nil, err
	}
	if cfg.APIURL == "" || cfg.SocketURL == "" {
		return nil, nil, fmt.Errorf("backend endpoints not configured; set api_url and socket_url in %s", profile.ConfigPath())
	}
	if err := profile.EnsureDir(name); err != nil {
		return nil, nil, err
	}

	db, err := snapshot.Open(profile.DBPath(name))
	if err != nil {
		return nil, nil, err
	}
	if _, err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	logger := zap.NewNop()
	b := bus.New()
	api := backend.New(cfg.APIURL, cfg.SocketURL)
	queue := outbox.NewQueue(db, logger)
	sender := outbox.NewSender(db, api, b, logger, 0)

	s := store.New(api, b, status.NewSet(b), logger,
		store.WithAuditor(queue),
		store.WithSaver(db),
	)
	state, err := db.Load()
	if err == nil {
		s.Restore(state)
	}
	if cfg.UserEmail != "" {
		s.SetUserEmail(cfg.UserEmail)
	}

	e := &env{cfg: cfg, db: db, api: api, store: s, sender: sender, owner: cfg.UserEmail}
	closer := func() {
		e.sender.DrainOnce(context.Background())
		_ = e.db.Close()
	}
	return e, closer, nil
}

// requireOwner fails fast for commands that need the configured account.
func (e *env) requireOwner() error {
	if e.owner == "" {
		return fmt.Errorf("user_email not configured; set it in %s or BLAST_USER_EMAIL", profile.ConfigPath())
	}
	return nil
}
