package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddContactReturnsCanonicalRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/contacts/add/user%40example.com" && r.URL.Path != "/api/contacts/add/user@example.com" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["phone"] != "85291234567" {
			t.Errorf("phone = %q", body["phone"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"contact": Contact{ID: "c1", Name: body["name"], Phone: body["phone"], Labels: []string{}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL)
	got, err := c.AddContact(context.Background(), "user@example.com", "John", "85291234567")
	if err != nil {
		t.Fatalf("AddContact() error = %v", err)
	}
	if got.ID != "c1" || got.Phone != "85291234567" {
		t.Errorf("contact = %+v", got)
	}
}

func TestAddContactDuplicate(t *testing.T) {
	// The backend answers 200 without a contact field for duplicates.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "contact already exists"})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL)
	_, err := c.AddContact(context.Background(), "u@e.com", "John", "111")
	if !errors.Is(err, ErrDuplicateContact) {
		t.Errorf("error = %v, want ErrDuplicateContact", err)
	}
}

func TestToggleLabelMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{"attached", "attached", false},
		{"detached", "detached", false},
		{"garbage", "sideways", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{"mode": tt.mode})
			}))
			defer srv.Close()

			c := New(srv.URL, srv.URL)
			mode, err := c.ToggleLabel(context.Background(), "c1", "l1", "u@e.com")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToggleLabel() error = %v", err)
			}
			if string(mode) != tt.mode {
				t.Errorf("mode = %q, want %q", mode, tt.mode)
			}
		})
	}
}

func TestMassAssignCarriesFullIDList(t *testing.T) {
	var got struct {
		ContactIDs []string `json:"contactIds"`
		LabelID    string   `json:"labelId"`
		UserEmail  string   `json:"userEmail"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL)
	ids := []string{"a", "b", "c"}
	if err := c.MassAssignLabel(context.Background(), ids, "l1", "u@e.com"); err != nil {
		t.Fatal(err)
	}
	if len(got.ContactIDs) != 3 || got.LabelID != "l1" || got.UserEmail != "u@e.com" {
		t.Errorf("request body = %+v", got)
	}
}

func TestBackendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL)
	if err := c.DeleteLabel(context.Background(), "l1"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestSessionCallsRequireUserID(t *testing.T) {
	c := New("http://unused", "http://unused")
	if err := c.DisconnectUser(context.Background(), ""); !errors.Is(err, ErrNotConnected) {
		t.Errorf("DisconnectUser error = %v, want ErrNotConnected", err)
	}
	if _, err := c.ScrapeContacts(context.Background(), ""); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ScrapeContacts error = %v, want ErrNotConnected", err)
	}
	if err := c.SendMessage(context.Background(), "", nil, "m", "u", "t"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendMessage error = %v, want ErrNotConnected", err)
	}
}

func TestConnectUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/connect-user" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(ConnectResult{UserID: "u-42", QRCodeURL: "https://example.com/qr.png"})
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL)
	res, err := c.ConnectUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.UserID != "u-42" || res.QRCodeURL == "" {
		t.Errorf("result = %+v", res)
	}
}
