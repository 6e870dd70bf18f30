package bus

import "time"

// Event is a domain event published on the bus. Kind is dot-namespaced
// ("contact.added", "label.mass_assigned", "notice.error", ...).
type Event struct {
	Kind    string
	At      time.Time
	Payload any
}

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

// Notice is the payload for "notice.*" events: the toast equivalent that
// any attached surface renders. Raw backend error bodies never appear in
// Text.
type Notice struct {
	Level NoticeLevel
	Text  string
}
