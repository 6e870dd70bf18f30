// Package outbox is the fire-and-forget audit side channel. Store actions
// enqueue activity entries durably and move on; a background sender
// delivers them to the backend. A delivery failure marks the entry failed
// and never surfaces into the primary operation's error handling.
package outbox

import (
	"github.com/google/uuid"
	"github.com/wablast/blast/internal/snapshot"
	"go.uber.org/zap"
)

// Queue accepts audit entries from the store.
type Queue struct {
	db     *snapshot.DB
	logger *zap.Logger
}

// NewQueue creates an activity queue backed by the profile database.
func NewQueue(db *snapshot.DB, logger *zap.Logger) *Queue {
	return &Queue{db: db, logger: logger}
}

// Record enqueues one audit entry. Errors are logged, not returned: the
// audit trail must never block or fail a primary mutation.
func (q *Queue) Record(userEmail, action string) {
	if userEmail == "" || action == "" {
		return
	}
	id := uuid.NewString()
	if err := q.db.QueueActivity(id, userEmail, action); err != nil {
		q.logger.Warn("failed to queue activity", zap.Error(err), zap.String("action", action))
	}
}
