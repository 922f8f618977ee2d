package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Jellyfin contains connection settings for the Jellyfin server.
type Jellyfin struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	UseKeyring     bool   `toml:"use_keyring"`
	DeviceID       string `toml:"device_id"`
	DeviceName     string `toml:"device_name"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Player describes the external media player started by the handler.
type Player struct {
	Path string   `toml:"path"`
	Args []string `toml:"args"`
	// TitleArg and StartArg are appended when non-empty. {title} and
	// {seconds} are substituted.
	TitleArg string `toml:"title_arg"`
	StartArg string `toml:"start_arg"`
	// MPVIPC enables position reporting through mpv's JSON IPC.
	MPVIPC bool `toml:"mpv_ipc"`
}

// Bridge contains settings for the browser-side button injection.
type Bridge struct {
	BrowserURL     string `toml:"browser_url"`
	LaunchBrowser  bool   `toml:"launch_browser"`
	Headless       bool   `toml:"headless"`
	WebPath        string `toml:"web_path"`
	Scheme         string `toml:"scheme"`
	PollIntervalMS int    `toml:"poll_interval_ms"`
	FrameCleanupMS int    `toml:"frame_cleanup_ms"`
	IconURL        string `toml:"icon_url"`
	ButtonTitle    string `toml:"button_title"`
	LaunchMode     string `toml:"launch_mode"`
	UsePageAPI     bool   `toml:"use_page_api"`
}

// Playback contains timing for progress reporting by the handler.
type Playback struct {
	ReportIntervalSeconds int `toml:"report_interval_seconds"`
	StartupDelaySeconds   int `toml:"startup_delay_seconds"`
	ReplaceTimeoutSeconds int `toml:"replace_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for jellypot.
//
// Configuration sections by subsystem:
//   - Paths: state (lock, socket) and log directories
//   - Jellyfin: server URL and credentials
//   - Player: external player command line
//   - Bridge: browser attachment and injected button
//   - Playback: progress reporting cadence
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Jellyfin Jellyfin `toml:"jellyfin"`
	Player   Player   `toml:"player"`
	Bridge   Bridge   `toml:"bridge"`
	Playback Playback `toml:"playback"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("jellypot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequireServer reports whether the Jellyfin connection settings needed by
// the handler and the HTTP resolver are present. The password may still come
// from the keyring, so only the URL and username are checked here.
func (c *Config) RequireServer() error {
	if strings.TrimSpace(c.Jellyfin.URL) == "" {
		return errors.New("jellyfin.url must be set (or export JELLYFIN_URL)")
	}
	if strings.TrimSpace(c.Jellyfin.Username) == "" {
		return errors.New("jellyfin.username must be set (or export JELLYFIN_USERNAME)")
	}
	return nil
}

// PollInterval returns the injector tick period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bridge.PollIntervalMS) * time.Millisecond
}

// FrameCleanup returns how long a launch frame stays attached.
func (c *Config) FrameCleanup() time.Duration {
	return time.Duration(c.Bridge.FrameCleanupMS) * time.Millisecond
}

// ReportInterval returns the playback progress reporting period.
func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.Playback.ReportIntervalSeconds) * time.Second
}

// StartupDelay returns how long the handler waits before the first progress probe.
func (c *Config) StartupDelay() time.Duration {
	return time.Duration(c.Playback.StartupDelaySeconds) * time.Second
}

// ReplaceTimeout bounds how long a new handler waits for the previous one to exit.
func (c *Config) ReplaceTimeout() time.Duration {
	return time.Duration(c.Playback.ReplaceTimeoutSeconds) * time.Second
}

// RequestTimeout returns the HTTP timeout for Jellyfin calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Jellyfin.RequestTimeout) * time.Second
}

// WebURL returns the Jellyfin web client address used to find or open the browser tab.
func (c *Config) WebURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	if base == "" {
		return ""
	}
	return base + c.Bridge.WebPath
}

// LogFile returns the path of the log file inside the log directory.
func (c *Config) LogFile() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "jellypot.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
