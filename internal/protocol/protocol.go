// Package protocol parses launch URLs and registers the custom scheme with
// the operating system so that opening one starts the handler.
package protocol

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"jellypot/internal/services"
)

// ErrUnsupported reports a platform without a registration backend.
var ErrUnsupported = errors.New("scheme registration is not supported on this platform")

var itemIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// IsLaunchURL reports whether raw uses scheme.
func IsLaunchURL(scheme, raw string) bool {
	prefix := scheme + "://"
	raw = strings.TrimSpace(raw)
	return len(raw) >= len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix)
}

// ParseLaunchURL returns the item id carried by "<scheme>://<id>". Browsers
// may append a trailing slash, a query or a fragment; they are ignored.
func ParseLaunchURL(scheme, raw string) (string, error) {
	if !IsLaunchURL(scheme, raw) {
		return "", services.Wrap(services.ErrValidation, "protocol", "parse", fmt.Sprintf("%q is not a %s:// url", raw, scheme), nil)
	}
	raw = strings.TrimSpace(raw)
	id := raw[len(scheme)+3:]
	if i := strings.IndexAny(id, "?#"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimRight(id, "/")
	if !itemIDPattern.MatchString(id) {
		return "", services.Wrap(services.ErrValidation, "protocol", "parse", fmt.Sprintf("invalid item id in %q", raw), nil)
	}
	return id, nil
}

// Registration describes the handler to register for a scheme.
type Registration struct {
	Scheme      string
	Description string
	// Executable is the absolute path of the handler binary.
	Executable string
}

// NewRegistration describes the running executable as the handler of scheme.
func NewRegistration(scheme string) (Registration, error) {
	exe, err := os.Executable()
	if err != nil {
		return Registration{}, fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	abs, err := filepath.Abs(exe)
	if err != nil {
		return Registration{}, fmt.Errorf("resolve executable path: %w", err)
	}
	return Registration{
		Scheme:      scheme,
		Description: scheme + " protocol",
		Executable:  abs,
	}, nil
}

// Command is the command line the OS runs; %1 is replaced by the URL.
func (r Registration) Command() string {
	return fmt.Sprintf(`"%s" "%%1"`, r.Executable)
}

// Register installs the scheme handler for the current user.
func Register(reg Registration) error {
	if strings.TrimSpace(reg.Scheme) == "" || strings.TrimSpace(reg.Executable) == "" {
		return services.Wrap(services.ErrValidation, "protocol", "register", "scheme and executable are required", nil)
	}
	return register(reg)
}

// Unregister removes the scheme handler for the current user.
func Unregister(scheme string) error {
	if strings.TrimSpace(scheme) == "" {
		return services.Wrap(services.ErrValidation, "protocol", "unregister", "scheme is required", nil)
	}
	return unregister(scheme)
}
