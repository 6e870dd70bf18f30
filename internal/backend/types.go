package backend

// Contact is a stored contact as the backend returns it.
type Contact struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Labels []string `json:"labels"`
}

// DisplayName returns the contact name, falling back to the phone number.
func (c Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Phone
}

// HasLabel reports whether the contact carries the given label id.
func (c Contact) HasLabel(labelID string) bool {
	for _, id := range c.Labels {
		if id == labelID {
			return true
		}
	}
	return false
}

// Label is a contact label as the backend returns it.
type Label struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	Color      string   `json:"color,omitempty"`
	UserEmail  string   `json:"userEmail"`
	ContactIDs []string `json:"contactIds"`
}

// HasContact reports whether the label references the given contact id.
func (l Label) HasContact(contactID string) bool {
	for _, id := range l.ContactIDs {
		if id == contactID {
			return true
		}
	}
	return false
}

// ToggleMode is the backend's authoritative answer to a label toggle.
type ToggleMode string

const (
	ModeAttached ToggleMode = "attached"
	ModeDetached ToggleMode = "detached"
)

// ConnectResult is returned by the socket server when a session is registered.
type ConnectResult struct {
	UserID    string `json:"userId"`
	QRCodeURL string `json:"qrCodeUrl"`
	QRCode    string `json:"qrCode,omitempty"`
}

// Activity is one entry in the audit trail.
type Activity struct {
	ID        string `json:"_id"`
	UserEmail string `json:"userEmail"`
	Action    string `json:"action"`
	CreatedAt string `json:"createdAt"`
}
