package snapshot

import "time"

// ActivityEntry is one queued audit-trail entry awaiting delivery.
type ActivityEntry struct {
	ID           string
	UserEmail    string
	Action       string
	Status       string // queued, sending, sent, failed
	ErrorMessage string
}

// QueueActivity adds an audit entry to the activity outbox.
func (db *DB) QueueActivity(id, userEmail, action string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO activity_outbox (id, user_email, action, status, created_at, updated_at)
		VALUES (?, ?, ?, 'queued', ?, ?)`,
		id, userEmail, action, now, now)
	return err
}

// PendingActivities returns queued entries oldest first.
func (db *DB) PendingActivities() ([]ActivityEntry, error) {
	rows, err := db.Query(`
		SELECT id, user_email, action, status, error_message
		FROM activity_outbox WHERE status = 'queued' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.UserEmail, &e.Action, &e.Status, &e.ErrorMessage); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkActivitySent updates an entry to 'sent'.
func (db *DB) MarkActivitySent(id string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE activity_outbox SET status = 'sent', updated_at = ? WHERE id = ?`, now, id)
	return err
}

// MarkActivityFailed updates an entry to 'failed' with an error message.
func (db *DB) MarkActivityFailed(id, errMsg string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE activity_outbox SET status = 'failed', error_message = ?, updated_at = ? WHERE id = ?`, errMsg, now, id)
	return err
}
