// Package backend is the typed JSON client for the remote blast backend:
// the REST API (contacts, labels, activities, composer) and the socket
// server (session registration, scraping, message dispatch). The backend
// is the source of truth; this package only moves bytes and never touches
// local state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrDuplicateContact is returned when the backend reports that a phone
// number already exists for this user. The API signals this by answering
// 200 without a contact payload rather than with an error status.
var ErrDuplicateContact = errors.New("contact already exists")

// ErrNotConnected is returned by session-scoped calls made without a
// registered user id.
var ErrNotConnected = errors.New("no active session")

// Client talks to the blast REST API and socket server.
type Client struct {
	apiURL    string
	socketURL string
	http      *http.Client
}

// New creates a client for the given REST API and socket server base URLs.
// Trailing slashes are tolerated.
func New(apiURL, socketURL string) *Client {
	return &Client{
		apiURL:    trimSlash(apiURL),
		socketURL: trimSlash(socketURL),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func trimSlash(u string) string {
	for len(u) > 0 && u[len(u)-1] == '/' {
		u = u[:len(u)-1]
	}
	return u
}

// ListContacts fetches all contacts for the owner.
func (c *Client) ListContacts(ctx context.Context, ownerKey string) ([]Contact, error) {
	var contacts []Contact
	err := c.do(ctx, http.MethodGet, c.apiURL+"/api/contacts/"+url.PathEscape(ownerKey), nil, &contacts)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// AddContact creates a contact and returns the canonical server record.
// Returns ErrDuplicateContact when the phone already exists.
func (c *Client) AddContact(ctx context.Context, ownerKey, name, phone string) (*Contact, error) {
	body := map[string]string{"name": name, "phone": phone}
	var resp struct {
		Contact *Contact `json:"contact"`
	}
	err := c.do(ctx, http.MethodPost, c.apiURL+"/api/contacts/add/"+url.PathEscape(ownerKey), body, &resp)
	if err != nil {
		return nil, fmt.Errorf("add contact: %w", err)
	}
	if resp.Contact == nil {
		return nil, ErrDuplicateContact
	}
	return resp.Contact, nil
}

// DeleteContact removes a single contact by phone.
func (c *Client) DeleteContact(ctx context.Context, ownerKey, phone string) error {
	u := c.apiURL + "/api/contacts/delete/" + url.PathEscape(ownerKey) + "/" + url.PathEscape(phone)
	if err := c.do(ctx, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// MassDeleteContacts removes every contact in phones with one batched call.
func (c *Client) MassDeleteContacts(ctx context.Context, ownerKey string, phones []string) error {
	body := map[string][]string{"phoneNumbers": phones}
	u := c.apiURL + "/api/contacts/mass-delete/" + url.PathEscape(ownerKey)
	if err := c.do(ctx, http.MethodDelete, u, body, nil); err != nil {
		return fmt.Errorf("mass delete contacts: %w", err)
	}
	return nil
}

// ListLabels fetches all labels for the user.
func (c *Client) ListLabels(ctx context.Context, userEmail string) ([]Label, error) {
	u := c.apiURL + "/api/labels/get-labels?userEmail=" + url.QueryEscape(userEmail)
	var labels []Label
	if err := c.do(ctx, http.MethodGet, u, nil, &labels); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// CreateLabel creates a label and returns the server record.
func (c *Client) CreateLabel(ctx context.Context, name, color, userEmail string) (*Label, error) {
	body := map[string]string{"name": name, "color": color, "userEmail": userEmail}
	var label Label
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/api/labels/create-label", body, &label); err != nil {
		return nil, fmt.Errorf("create label: %w", err)
	}
	return &label, nil
}

// DeleteLabel removes a label record. Callers are responsible for cascading
// the detach from member contacts first.
func (c *Client) DeleteLabel(ctx context.Context, labelID string) error {
	u := c.apiURL + "/api/labels/delete-label/" + url.PathEscape(labelID)
	if err := c.do(ctx, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	return nil
}

// ToggleLabel flips a single contact/label pair and returns the backend's
// authoritative resulting mode.
func (c *Client) ToggleLabel(ctx context.Context, contactID, labelID, userEmail string) (ToggleMode, error) {
	body := map[string]string{"contactId": contactID, "labelId": labelID, "userEmail": userEmail}
	var resp struct {
		Mode ToggleMode `json:"mode"`
	}
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/api/labels/toggle-label", body, &resp); err != nil {
		return "", fmt.Errorf("toggle label: %w", err)
	}
	if resp.Mode != ModeAttached && resp.Mode != ModeDetached {
		return "", fmt.Errorf("toggle label: unexpected mode %q", resp.Mode)
	}
	return resp.Mode, nil
}

// MassAssignLabel attaches a label to every contact id in one batched call.
func (c *Client) MassAssignLabel(ctx context.Context, contactIDs []string, labelID, userEmail string) error {
	return c.massLabel(ctx, "mass-assign-label", contactIDs, labelID, userEmail)
}

// MassDeassignLabel detaches a label from every contact id in one batched call.
func (c *Client) MassDeassignLabel(ctx context.Context, contactIDs []string, labelID, userEmail string) error {
	return c.massLabel(ctx, "mass-deassign-label", contactIDs, labelID, userEmail)
}

func (c *Client) massLabel(ctx context.Context, op string, contactIDs []string, labelID, userEmail string) error {
	body := struct {
		ContactIDs []string `json:"contactIds"`
		LabelID    string   `json:"labelId"`
		UserEmail  string   `json:"userEmail"`
	}{contactIDs, labelID, userEmail}
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/api/labels/"+op, body, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LogActivity appends one entry to the audit trail.
func (c *Client) LogActivity(ctx context.Context, userEmail, action string) error {
	body := map[string]string{"userEmail": userEmail, "action": action}
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/api/activities/update", body, nil); err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// ListActivities fetches the audit trail for the user, newest first.
func (c *Client) ListActivities(ctx context.Context, userEmail string) ([]Activity, error) {
	u := c.apiURL + "/api/activities/" + url.PathEscape(userEmail)
	var acts []Activity
	if err := c.do(ctx, http.MethodGet, u, nil, &acts); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return acts, nil
}

// ConnectUser registers a session on the socket server and returns the
// user id and QR linking payload.
func (c *Client) ConnectUser(ctx context.Context) (*ConnectResult, error) {
	var res ConnectResult
	if err := c.do(ctx, http.MethodPost, c.socketURL+"/connect-user", struct{}{}, &res); err != nil {
		return nil, fmt.Errorf("connect user: %w", err)
	}
	return &res, nil
}

// DisconnectUser tears down the session for the given user id.
func (c *Client) DisconnectUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotConnected
	}
	body := map[string]string{"userId": userID}
	if err := c.do(ctx, http.MethodPost, c.socketURL+"/disconnect-user", body, nil); err != nil {
		return fmt.Errorf("disconnect user: %w", err)
	}
	return nil
}

// SendMessage dispatches a blast to the given phone numbers.
func (c *Client) SendMessage(ctx context.Context, userID string, phones []string, message, userEmail, title string) error {
	if userID == "" {
		return ErrNotConnected
	}
	body := struct {
		UserID       string   `json:"userId"`
		PhoneNumbers []string `json:"phoneNumbers"`
		Message      string   `json:"message"`
		UserEmail    string   `json:"userEmail"`
		Title        string   `json:"title"`
	}{userID, phones, message, userEmail, title}
	if err := c.do(ctx, http.MethodPost, c.socketURL+"/send-message", body, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// ScrapeContacts asks the socket server to pull phone numbers from the
// linked WhatsApp account.
func (c *Client) ScrapeContacts(ctx context.Context, userID string) ([]string, error) {
	return c.scrape(ctx, "/scrape-contacts", userID)
}

// ScrapeGroups pulls group participant phone numbers from the linked account.
func (c *Client) ScrapeGroups(ctx context.Context, userID string) ([]string, error) {
	return c.scrape(ctx, "/scrape-groups", userID)
}

func (c *Client) scrape(ctx context.Context, path, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrNotConnected
	}
	body := map[string]string{"userId": userID}
	var resp struct {
		PhoneNumbers []string `json:"phoneNumbers"`
	}
	if err := c.do(ctx, http.MethodPost, c.socketURL+path, body, &resp); err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}
	return resp.PhoneNumbers, nil
}

// ComposeMessage asks the composer endpoint to draft a message for a goal.
func (c *Client) ComposeMessage(ctx context.Context, goal string) (string, error) {
	body := map[string]string{"goal": goal}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/api/message-composer/generate", body, &resp); err != nil {
		return "", fmt.Errorf("compose message: %w", err)
	}
	return resp.Message, nil
}

// do performs one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for diagnostics but never surface raw
		// backend bodies to callers beyond the status line.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return fmt.Errorf("backend returned %s", resp.Status)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
