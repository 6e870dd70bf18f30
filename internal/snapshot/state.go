package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wablast/blast/internal/backend"
)

// State is the full persisted store snapshot: entity collections plus the
// ephemeral UI state that survives a restart (selection, draft, session).
type State struct {
	Contacts    []backend.Contact
	Labels      []backend.Label
	Selected    []string
	Message     string
	Title       string
	UserID      string
	UserEmail   string
	QRCodeURL   string
	ActiveLabel string
	SearchTerm  string
}

// Save replaces the persisted snapshot with state in one transaction.
func (db *DB) Save(state *State) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()

	for _, table := range []string{"contacts", "labels", "selections"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, c := range state.Contacts {
		labels, err := json.Marshal(emptyIfNil(c.Labels))
		if err != nil {
			return fmt.Errorf("encode labels for %q: %w", c.Phone, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO contacts (id, name, phone, labels, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Phone, string(labels), now); err != nil {
			return fmt.Errorf("insert contact %q: %w", c.Phone, err)
		}
	}

	for _, l := range state.Labels {
		contactIDs, err := json.Marshal(emptyIfNil(l.ContactIDs))
		if err != nil {
			return fmt.Errorf("encode contact ids for %q: %w", l.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO labels (id, name, color, user_email, contact_ids, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Color, l.UserEmail, string(contactIDs), now); err != nil {
			return fmt.Errorf("insert label %q: %w", l.ID, err)
		}
	}

	for i, phone := range state.Selected {
		if _, err := tx.Exec(`INSERT INTO selections (phone, position) VALUES (?, ?)`, phone, i); err != nil {
			return fmt.Errorf("insert selection %q: %w", phone, err)
		}
	}

	kv := map[string]string{
		"message":      state.Message,
		"title":        state.Title,
		"user_id":      state.UserID,
		"user_email":   state.UserEmail,
		"qr_code_url":  state.QRCodeURL,
		"active_label": state.ActiveLabel,
		"search_term":  state.SearchTerm,
	}
	for k, v := range kv {
		if _, err := tx.Exec(`
			INSERT INTO session_state (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now); err != nil {
			return fmt.Errorf("upsert session key %q: %w", k, err)
		}
	}

	return tx.Commit()
}

// Load reads the persisted snapshot. An empty database yields a zero State.
func (db *DB) Load() (*State, error) {
	state := &State{}

	rows, err := db.Query(`SELECT id, name, phone, labels FROM contacts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("read contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var c backend.Contact
		var labels string
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &labels); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(labels), &c.Labels); err != nil {
			return nil, fmt.Errorf("decode labels for %q: %w", c.Phone, err)
		}
		state.Contacts = append(state.Contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lrows, err := db.Query(`SELECT id, name, color, user_email, contact_ids FROM labels ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	defer func() { _ = lrows.Close() }()
	for lrows.Next() {
		var l backend.Label
		var contactIDs string
		if err := lrows.Scan(&l.ID, &l.Name, &l.Color, &l.UserEmail, &contactIDs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contactIDs), &l.ContactIDs); err != nil {
			return nil, fmt.Errorf("decode contact ids for %q: %w", l.ID, err)
		}
		state.Labels = append(state.Labels, l)
	}
	if err := lrows.Err(); err != nil {
		return nil, err
	}

	srows, err := db.Query(`SELECT phone FROM selections ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	defer func() { _ = srows.Close() }()
	for srows.Next() {
		var phone string
		if err := srows.Scan(&phone); err != nil {
			return nil, err
		}
		state.Selected = append(state.Selected, phone)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}

	for k, dst := range map[string]*string{
		"message":      &state.Message,
		"title":        &state.Title,
		"user_id":      &state.UserID,
		"user_email":   &state.UserEmail,
		"qr_code_url":  &state.QRCodeURL,
		"active_label": &state.ActiveLabel,
		"search_term":  &state.SearchTerm,
	} {
		err := db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, k).Scan(dst)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("read session key %q: %w", k, err)
		}
	}

	return state, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
