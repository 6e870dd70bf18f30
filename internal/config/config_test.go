package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := &Config{
		DefaultProfile: "work",
		APIURL:         "https://api.example.com",
		SocketURL:      "https://socket.example.com",
		UserEmail:      "me@example.com",
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "" || cfg.DefaultProfile != "" {
		t.Errorf("cfg = %+v, want zero", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BLAST_API_URL", "https://override.example.com")
	t.Setenv("BLAST_USER_EMAIL", "env@example.com")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{APIURL: "https://file.example.com"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "https://override.example.com" {
		t.Errorf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.UserEmail != "env@example.com" {
		t.Errorf("UserEmail = %q, want env override", cfg.UserEmail)
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
