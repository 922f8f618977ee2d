package secrets

import (
	"testing"

	"github.com/zalando/go-keyring"

	"jellypot/internal/config"
)

func TestAccountUsesHost(t *testing.T) {
	if got := account("http://Media.Local:8096/jellyfin", " alice "); got != "alice@media.local:8096" {
		t.Fatalf("unexpected account %q", got)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewStore()

	if _, ok, err := store.Password("http://media.local", "alice"); err != nil || ok {
		t.Fatalf("expected no stored password, got ok=%v err=%v", ok, err)
	}
	if err := store.SetPassword("http://media.local", "alice", "secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	got, ok, err := store.Password("http://media.local", "alice")
	if err != nil || !ok || got != "secret" {
		t.Fatalf("Password = %q, %v, %v", got, ok, err)
	}
	if err := store.DeletePassword("http://media.local", "alice"); err != nil {
		t.Fatalf("DeletePassword: %v", err)
	}
	if err := store.DeletePassword("http://media.local", "alice"); err != nil {
		t.Fatalf("second DeletePassword: %v", err)
	}
}

func TestResolvePassword(t *testing.T) {
	keyring.MockInit()
	store := NewStore()
	cfg := config.Default()
	cfg.Jellyfin.URL = "http://media.local:8096"
	cfg.Jellyfin.Username = "alice"

	cfg.Jellyfin.Password = "inline"
	cfg.Jellyfin.UseKeyring = true
	if got, err := store.ResolvePassword(&cfg); err != nil || got != "inline" {
		t.Fatalf("expected inline password, got %q, %v", got, err)
	}

	cfg.Jellyfin.Password = ""
	if _, err := store.ResolvePassword(&cfg); err == nil {
		t.Fatal("expected error when keyring has no entry")
	}

	if err := store.SetPassword(cfg.Jellyfin.URL, "alice", "stored"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if got, err := store.ResolvePassword(&cfg); err != nil || got != "stored" {
		t.Fatalf("expected keyring password, got %q, %v", got, err)
	}

	cfg.Jellyfin.UseKeyring = false
	if got, err := store.ResolvePassword(&cfg); err != nil || got != "" {
		t.Fatalf("expected empty password without keyring, got %q, %v", got, err)
	}
}
