// Package secrets keeps the Jellyfin password in the operating system
// keyring so it does not have to live in the config file.
package secrets

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"

	"jellypot/internal/config"
)

const service = "jellypot"

// Store reads and writes Jellyfin passwords in the keyring.
type Store struct {
	service string
}

// NewStore returns a Store.
func NewStore() *Store {
	return &Store{service: service}
}

// account keys the secret by user and server host.
func account(serverURL, username string) string {
	host := strings.TrimSpace(serverURL)
	if parsed, err := url.Parse(host); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	return strings.TrimSpace(username) + "@" + strings.ToLower(host)
}

// Password returns the stored password. ok is false when none is stored.
func (s *Store) Password(serverURL, username string) (string, bool, error) {
	value, err := keyring.Get(s.service, account(serverURL, username))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read keyring: %w", err)
	}
	return value, true, nil
}

// SetPassword stores password.
func (s *Store) SetPassword(serverURL, username, password string) error {
	if err := keyring.Set(s.service, account(serverURL, username), password); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// DeletePassword removes a stored password. Removing a missing one is not an error.
func (s *Store) DeletePassword(serverURL, username string) error {
	if err := keyring.Delete(s.service, account(serverURL, username)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}

// ResolvePassword returns the configured password, falling back to the
// keyring when jellyfin.use_keyring is set.
func (s *Store) ResolvePassword(cfg *config.Config) (string, error) {
	if cfg.Jellyfin.Password != "" || !cfg.Jellyfin.UseKeyring {
		return cfg.Jellyfin.Password, nil
	}
	password, ok, err := s.Password(cfg.Jellyfin.URL, cfg.Jellyfin.Username)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no password stored for %s; run `jellypot login`", account(cfg.Jellyfin.URL, cfg.Jellyfin.Username))
	}
	return password, nil
}
