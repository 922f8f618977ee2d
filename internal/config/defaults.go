package config

const (
	defaultConfigPath            = "~/.config/jellypot/config.toml"
	defaultStateDir              = "~/.local/state/jellypot"
	defaultLogDir                = "~/.local/state/jellypot/logs"
	defaultDeviceName            = "jellypot"
	defaultRequestTimeout        = 10
	defaultPlayerPath            = "mpv"
	defaultPlayerTitleArg        = "--force-media-title={title}"
	defaultPlayerStartArg        = "--start={seconds}"
	defaultWebPath               = "/web/"
	defaultScheme                = "jellypot"
	defaultPollIntervalMS        = 1000
	defaultFrameCleanupMS        = 100
	defaultIconURL               = "https://cdn.jsdelivr.net/gh/bpking1/embyExternalUrl@0.0.2/embyWebAddExternalUrl/icons/icon-PotPlayer.webp"
	defaultButtonTitle           = "Potplayer"
	defaultLaunchMode            = LaunchModeFrame
	defaultReportIntervalSeconds = 5
	defaultStartupDelaySeconds   = 3
	defaultReplaceTimeoutSeconds = 5
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Launch modes accepted by bridge.launch_mode.
const (
	LaunchModeFrame = "frame"
	LaunchModeExec  = "exec"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Jellyfin: Jellyfin{
			DeviceName:     defaultDeviceName,
			RequestTimeout: defaultRequestTimeout,
		},
		Player: Player{
			Path:     defaultPlayerPath,
			Args:     []string{"--fs"},
			TitleArg: defaultPlayerTitleArg,
			StartArg: defaultPlayerStartArg,
			MPVIPC:   true,
		},
		Bridge: Bridge{
			LaunchBrowser:  true,
			WebPath:        defaultWebPath,
			Scheme:         defaultScheme,
			PollIntervalMS: defaultPollIntervalMS,
			FrameCleanupMS: defaultFrameCleanupMS,
			IconURL:        defaultIconURL,
			ButtonTitle:    defaultButtonTitle,
			LaunchMode:     defaultLaunchMode,
			UsePageAPI:     true,
		},
		Playback: Playback{
			ReportIntervalSeconds: defaultReportIntervalSeconds,
			StartupDelaySeconds:   defaultStartupDelaySeconds,
			ReplaceTimeoutSeconds: defaultReplaceTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
