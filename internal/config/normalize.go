package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeJellyfin()
	c.normalizePlayer()
	c.normalizeBridge()
	c.normalizePlayback()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeJellyfin() {
	lookup := func(current *string, env string) {
		if strings.TrimSpace(*current) != "" {
			return
		}
		if value, ok := os.LookupEnv(env); ok {
			*current = value
		}
	}
	lookup(&c.Jellyfin.URL, "JELLYFIN_URL")
	lookup(&c.Jellyfin.Username, "JELLYFIN_USERNAME")
	lookup(&c.Jellyfin.Password, "JELLYFIN_PASSWORD")

	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.Username = strings.TrimSpace(c.Jellyfin.Username)
	c.Jellyfin.DeviceName = strings.TrimSpace(c.Jellyfin.DeviceName)
	if c.Jellyfin.DeviceName == "" {
		c.Jellyfin.DeviceName = defaultDeviceName
	}
	if c.Jellyfin.RequestTimeout <= 0 {
		c.Jellyfin.RequestTimeout = defaultRequestTimeout
	}
	c.Jellyfin.DeviceID = strings.TrimSpace(c.Jellyfin.DeviceID)
	if c.Jellyfin.DeviceID == "" {
		c.Jellyfin.DeviceID = stableDeviceID(c.Jellyfin.Username)
	}
}

// stableDeviceID derives a device id that survives restarts so Jellyfin does
// not register a new device for every handler launch.
func stableDeviceID(username string) string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("jellypot:"+host+":"+username)).String()
}

func (c *Config) normalizePlayer() {
	c.Player.Path = strings.TrimSpace(c.Player.Path)
	if c.Player.Path == "" {
		c.Player.Path = defaultPlayerPath
	}
	c.Player.TitleArg = strings.TrimSpace(c.Player.TitleArg)
	c.Player.StartArg = strings.TrimSpace(c.Player.StartArg)
	args := c.Player.Args[:0]
	for _, arg := range c.Player.Args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Player.Args = args
}

func (c *Config) normalizeBridge() {
	c.Bridge.BrowserURL = strings.TrimSpace(c.Bridge.BrowserURL)
	c.Bridge.Scheme = strings.ToLower(strings.TrimSpace(c.Bridge.Scheme))
	if c.Bridge.Scheme == "" {
		c.Bridge.Scheme = defaultScheme
	}
	c.Bridge.WebPath = strings.TrimSpace(c.Bridge.WebPath)
	if c.Bridge.WebPath == "" {
		c.Bridge.WebPath = defaultWebPath
	}
	if !strings.HasPrefix(c.Bridge.WebPath, "/") {
		c.Bridge.WebPath = "/" + c.Bridge.WebPath
	}
	if !strings.HasSuffix(c.Bridge.WebPath, "/") {
		c.Bridge.WebPath += "/"
	}
	if c.Bridge.PollIntervalMS == 0 {
		c.Bridge.PollIntervalMS = defaultPollIntervalMS
	}
	c.Bridge.IconURL = strings.TrimSpace(c.Bridge.IconURL)
	c.Bridge.ButtonTitle = strings.TrimSpace(c.Bridge.ButtonTitle)
	if c.Bridge.ButtonTitle == "" {
		c.Bridge.ButtonTitle = defaultButtonTitle
	}
	c.Bridge.LaunchMode = strings.ToLower(strings.TrimSpace(c.Bridge.LaunchMode))
	if c.Bridge.LaunchMode == "" {
		c.Bridge.LaunchMode = defaultLaunchMode
	}
}

func (c *Config) normalizePlayback() {
	if c.Playback.ReportIntervalSeconds == 0 {
		c.Playback.ReportIntervalSeconds = defaultReportIntervalSeconds
	}
	if c.Playback.ReplaceTimeoutSeconds <= 0 {
		c.Playback.ReplaceTimeoutSeconds = defaultReplaceTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
