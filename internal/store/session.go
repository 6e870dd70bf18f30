package store

import (
	"context"
	"fmt"

	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/status"
	"go.uber.org/zap"
)

// Connect opens a socket-server session and stores the returned session
// id and QR linking payload. The caller renders the QR code.
func (s *Store) Connect(ctx context.Context, ownerKey string) error {
	s.mu.Lock()
	s.conn = Connecting
	s.mu.Unlock()

	res, err := s.api.ConnectUser(ctx)
	if err != nil {
		s.logger.Error("connect failed", zap.Error(err))
		s.mu.Lock()
		s.conn = Disconnected
		s.mu.Unlock()
		s.notify(bus.NoticeError, "could not connect, please try again")
		return err
	}

	s.mu.Lock()
	s.conn = Connected
	s.userID = res.UserID
	s.qrCodeURL = res.QRCodeURL
	s.mu.Unlock()
	s.persist()

	s.publish("session.connected", res.UserID)
	s.notify(bus.NoticeSuccess, "session connected, scan the QR code to link")
	s.record(ownerKey, "session connected")
	return nil
}

// Disconnect closes the session and clears everything that belongs to
// it: session id, QR payload, draft and selection. Contacts and labels
// stay loaded.
func (s *Store) Disconnect(ctx context.Context, ownerKey string) error {
	s.mu.RLock()
	userID := s.userID
	s.mu.RUnlock()
	if userID == "" {
		return nil
	}

	if err := s.api.DisconnectUser(ctx, userID); err != nil {
		s.logger.Error("disconnect failed", zap.Error(err), zap.String("user_id", userID))
		s.notify(bus.NoticeError, "could not disconnect, please try again")
		return err
	}

	s.mu.Lock()
	s.conn = Disconnected
	s.userID = ""
	s.qrCodeURL = ""
	s.message = ""
	s.title = ""
	s.selected = nil
	s.mu.Unlock()
	s.persist()

	s.publish("session.disconnected", userID)
	s.notify(bus.NoticeInfo, "session disconnected")
	s.record(ownerKey, "session disconnected")
	return nil
}

// SendBlast sends the current draft to every selected contact. The draft
// and selection are cleared only after the backend accepts the send.
func (s *Store) SendBlast(ctx context.Context, ownerKey string) error {
	s.mu.RLock()
	userID := s.userID
	title := s.title
	message := s.message
	phones := cloneStrings(s.selected)
	s.mu.RUnlock()

	if userID == "" {
		s.notify(bus.NoticeError, "connect a session before sending")
		return ErrDraftIncomplete
	}
	if title == "" || message == "" || len(phones) == 0 {
		s.notify(bus.NoticeError, "set a title, a message and at least one contact")
		return ErrDraftIncomplete
	}

	s.status.Loading(status.Message)
	if err := s.api.SendMessage(ctx, userID, phones, message, ownerKey, title); err != nil {
		s.logger.Error("send blast failed", zap.Error(err), zap.Int("recipients", len(phones)))
		s.status.Fail(status.Message)
		s.notify(bus.NoticeError, "could not send the blast, please try again")
		return err
	}

	s.mu.Lock()
	s.message = ""
	s.title = ""
	s.selected = nil
	s.mu.Unlock()
	s.persist()

	s.status.Succeed(status.Message)
	s.publish("blast.sent", len(phones))
	s.notify(bus.NoticeSuccess, fmt.Sprintf("blast sent to %d contacts", len(phones)))
	s.record(ownerKey, fmt.Sprintf("blast sent to %d contacts", len(phones)))
	return nil
}

// ComposeMessage asks the backend to draft a message body for the given
// goal and installs the result as the current draft body.
func (s *Store) ComposeMessage(ctx context.Context, goal, ownerKey string) error {
	if goal == "" {
		s.notify(bus.NoticeError, "describe what the message should say")
		return ErrDraftIncomplete
	}

	s.status.Loading(status.Compose)
	body, err := s.api.ComposeMessage(ctx, goal)
	if err != nil {
		s.logger.Error("compose failed", zap.Error(err))
		s.status.Fail(status.Compose)
		s.notify(bus.NoticeError, "could not compose a message, please try again")
		return err
	}

	s.mu.Lock()
	s.message = body
	s.mu.Unlock()
	s.persist()

	s.status.Succeed(status.Compose)
	s.publish("message.composed", nil)
	s.record(ownerKey, "message composed")
	return nil
}

// Refresh replaces both collections with the backend's truth. This is
// also the repair path after a partially applied cascade.
func (s *Store) Refresh(ctx context.Context, ownerKey string) error {
	s.status.Loading(status.Contacts)
	contacts, err := s.api.ListContacts(ctx, ownerKey)
	if err != nil {
		s.logger.Error("refresh contacts failed", zap.Error(err))
		s.status.Fail(status.Contacts)
		return err
	}
	s.SetContacts(contacts)
	s.status.Succeed(status.Contacts)

	s.status.Loading(status.Labels)
	labels, err := s.api.ListLabels(ctx, ownerKey)
	if err != nil {
		s.logger.Error("refresh labels failed", zap.Error(err))
		s.status.Fail(status.Labels)
		return err
	}
	s.SetLabels(labels)
	s.status.Succeed(status.Labels)

	s.publish("store.refreshed", nil)
	return nil
}

// Reset drops the local session and working state while keeping the
// label collection, matching a fresh sign-in on the same account.
func (s *Store) Reset() {
	s.mu.Lock()
	s.conn = Disconnected
	s.userID = ""
	s.qrCodeURL = ""
	s.contacts = nil
	s.selected = nil
	s.message = ""
	s.title = ""
	s.searchTerm = ""
	s.activeLabel = ""
	s.mu.Unlock()
	s.persist()
	s.publish("store.reset", nil)
}
