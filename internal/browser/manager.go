// Package browser attaches to Chrome over the DevTools protocol and exposes
// the Jellyfin web client tab to the rest of the bridge.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"jellypot/internal/logging"
	"jellypot/internal/services"
)

// Options configures the Manager.
type Options struct {
	// ControlURL is a DevTools endpoint of a running browser, either the
	// ws:// address or the http://host:port remote debugging address.
	// Empty means launch a local browser.
	ControlURL string
	// Launch allows starting a local browser when ControlURL is empty.
	Launch   bool
	Headless bool
	// UserDataDir keeps the launched browser's profile (and Jellyfin login)
	// between runs.
	UserDataDir string
	// WebURL is the Jellyfin web client address.
	WebURL string
	// PollInterval is how often FindPage looks for the tab.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Manager owns the CDP connection.
type Manager struct {
	opts    Options
	logger  *slog.Logger
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager constructs a Manager. Call Connect before FindPage.
func NewManager(opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &Manager{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "browser"),
	}
}

// Connect attaches to the configured browser, launching one if allowed.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser != nil {
		return nil
	}

	var wsURL string
	switch {
	case strings.TrimSpace(m.opts.ControlURL) != "":
		resolved, err := resolveControlURL(m.opts.ControlURL)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "browser", "resolve control url", m.opts.ControlURL, err)
		}
		wsURL = resolved
		m.logger.Info("connecting to browser", logging.String("url", wsURL))
	case m.opts.Launch:
		l := launcher.New().Headless(m.opts.Headless)
		if m.opts.UserDataDir != "" {
			l = l.UserDataDir(m.opts.UserDataDir)
		}
		u, err := l.Launch()
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "browser", "launch", "start local browser", err)
		}
		wsURL = u
		m.lnch = l
		m.logger.Info("launched local browser", logging.String("url", wsURL), logging.Bool("headless", m.opts.Headless))
	default:
		return services.Wrap(services.ErrConfiguration, "browser", "connect", "bridge.browser_url is empty and launching is disabled", nil)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return services.Wrap(services.ErrTransient, "browser", "connect", wsURL, err)
	}
	m.browser = b
	return nil
}

// FindPage returns the first tab showing the Jellyfin web client. A launched
// browser gets a new tab when none exists; an attached one is polled until
// the user opens it or ctx ends.
func (m *Manager) FindPage(ctx context.Context) (*Page, error) {
	m.mu.Lock()
	b := m.browser
	launched := m.lnch != nil
	m.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("browser not connected")
	}

	opened := false
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()
	for {
		pages, err := b.Pages()
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "browser", "list pages", "", err)
		}
		for _, p := range pages {
			info, err := p.Info()
			if err != nil {
				continue
			}
			if matchesWebURL(info.URL, m.opts.WebURL) {
				m.logger.Info("attached to jellyfin tab", logging.String("url", info.URL))
				return newPage(p, m.opts.Logger), nil
			}
		}
		if launched && !opened && m.opts.WebURL != "" {
			if _, err := b.Page(proto.TargetCreateTarget{URL: m.opts.WebURL}); err != nil {
				return nil, services.Wrap(services.ErrTransient, "browser", "open tab", m.opts.WebURL, err)
			}
			opened = true
			continue
		}
		m.logger.Debug("waiting for jellyfin tab", logging.String("web_url", m.opts.WebURL))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close shuts down a launched browser. An attached browser is left running.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lnch == nil {
		m.browser = nil
		return nil
	}
	var err error
	if m.browser != nil {
		err = m.browser.Close()
	}
	m.lnch.Cleanup()
	m.browser = nil
	m.lnch = nil
	return err
}

func resolveControlURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "ws://") || strings.HasPrefix(raw, "wss://") {
		return raw, nil
	}
	return launcher.ResolveURL(raw)
}

// matchesWebURL reports whether a tab URL belongs to the Jellyfin web
// client. With no configured server any ".../web/" page matches.
func matchesWebURL(pageURL, webURL string) bool {
	page, err := url.Parse(pageURL)
	if err != nil || page.Host == "" {
		return false
	}
	if strings.TrimSpace(webURL) == "" {
		return strings.Contains(page.Path, "/web/")
	}
	want, err := url.Parse(webURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(page.Scheme, want.Scheme) || !strings.EqualFold(page.Host, want.Host) {
		return false
	}
	return strings.HasPrefix(page.Path, strings.TrimRight(want.Path, "/"))
}
