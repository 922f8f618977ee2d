package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"jellypot/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("JELLYFIN_URL", "http://media.local:8096/")
	t.Setenv("JELLYFIN_USERNAME", "alice")
	t.Setenv("JELLYFIN_PASSWORD", "secret")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "jellypot")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Jellyfin.URL != "http://media.local:8096" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Jellyfin.URL)
	}
	if cfg.Jellyfin.Username != "alice" || cfg.Jellyfin.Password != "secret" {
		t.Fatalf("expected credentials from env, got %q/%q", cfg.Jellyfin.Username, cfg.Jellyfin.Password)
	}
	if cfg.Jellyfin.DeviceID == "" {
		t.Fatal("expected derived device id")
	}
	if cfg.Bridge.Scheme != "jellypot" {
		t.Fatalf("unexpected scheme: %q", cfg.Bridge.Scheme)
	}
	if !cfg.Bridge.UsePageAPI {
		t.Fatal("expected lookups through the page ApiClient by default")
	}
	if cfg.PollInterval().Milliseconds() != 1000 {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.FrameCleanup().Milliseconds() != 100 {
		t.Fatalf("unexpected frame cleanup: %s", cfg.FrameCleanup())
	}
	if cfg.WebURL() != "http://media.local:8096/web/" {
		t.Fatalf("unexpected web url: %q", cfg.WebURL())
	}
	if err := cfg.RequireServer(); err != nil {
		t.Fatalf("RequireServer: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestDeviceIDIsStable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JELLYFIN_USERNAME", "bob")

	first, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.Jellyfin.DeviceID != second.Jellyfin.DeviceID {
		t.Fatalf("device id changed between loads: %q vs %q", first.Jellyfin.DeviceID, second.Jellyfin.DeviceID)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "jellypot.toml")

	type payload struct {
		Jellyfin struct {
			URL      string `toml:"url"`
			Username string `toml:"username"`
		} `toml:"jellyfin"`
		Bridge struct {
			Scheme     string `toml:"scheme"`
			WebPath    string `toml:"web_path"`
			LaunchMode string `toml:"launch_mode"`
		} `toml:"bridge"`
		Player struct {
			Args []string `toml:"args"`
		} `toml:"player"`
	}
	custom := payload{}
	custom.Jellyfin.URL = "https://jf.example.com"
	custom.Jellyfin.Username = "carol"
	custom.Bridge.Scheme = "JellyPot"
	custom.Bridge.WebPath = "jellyfin/web"
	custom.Bridge.LaunchMode = "EXEC"
	custom.Player.Args = []string{" --fs ", "", "--no-border"}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Bridge.Scheme != "jellypot" {
		t.Fatalf("expected scheme lowercased, got %q", cfg.Bridge.Scheme)
	}
	if cfg.Bridge.WebPath != "/jellyfin/web/" {
		t.Fatalf("expected web path normalized, got %q", cfg.Bridge.WebPath)
	}
	if cfg.Bridge.LaunchMode != config.LaunchModeExec {
		t.Fatalf("expected exec launch mode, got %q", cfg.Bridge.LaunchMode)
	}
	if len(cfg.Player.Args) != 2 || cfg.Player.Args[0] != "--fs" || cfg.Player.Args[1] != "--no-border" {
		t.Fatalf("unexpected player args: %#v", cfg.Player.Args)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"scheme", func(c *config.Config) { c.Bridge.Scheme = "9pot" }, "bridge.scheme"},
		{"launch mode", func(c *config.Config) { c.Bridge.LaunchMode = "popup" }, "bridge.launch_mode"},
		{"cleanup", func(c *config.Config) { c.Bridge.FrameCleanupMS = -1 }, "bridge.frame_cleanup_ms"},
		{"browser", func(c *config.Config) { c.Bridge.LaunchBrowser = false }, "bridge.browser_url"},
		{"url", func(c *config.Config) { c.Jellyfin.URL = "ftp://jf" }, "jellyfin.url"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestRequireServerNeedsURLAndUser(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireServer(); err == nil {
		t.Fatal("expected missing url error")
	}
	cfg.Jellyfin.URL = "http://jf:8096"
	if err := cfg.RequireServer(); err == nil || !strings.Contains(err.Error(), "username") {
		t.Fatalf("expected missing username error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Jellyfin.URL != "http://localhost:8096" {
		t.Fatalf("unexpected sample url: %q", cfg.Jellyfin.URL)
	}
}
