package deps

import (
	"runtime"

	"github.com/go-rod/rod/lib/launcher"

	"jellypot/internal/config"
	urllauncher "jellypot/internal/launcher"
)

// Requirements lists the binaries the configuration depends on.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "Player",
			Command:     cfg.Player.Path,
			Description: "Plays items opened through the protocol handler",
		},
	}
	// rundll32 always exists on Windows.
	if runtime.GOOS != "windows" {
		opener := urllauncher.OpenerCommand(runtime.GOOS)
		reqs = append(reqs, Requirement{
			Name:        "URL opener",
			Command:     opener[0],
			Description: "Dispatches launch URLs when bridge.launch_mode is exec",
			Optional:    cfg.Bridge.LaunchMode != config.LaunchModeExec,
		})
	}
	if runtime.GOOS == "linux" {
		reqs = append(reqs, Requirement{
			Name:        "xdg-mime",
			Command:     "xdg-mime",
			Description: "Registers the jellypot:// scheme handler",
			Optional:    true,
		})
	}
	return reqs
}

// browserLookup finds a local Chromium. Tests replace it.
var browserLookup = launcher.LookPath

// CheckBrowser reports the browser the bridge would launch. It is optional
// when the bridge attaches to an already running browser.
func CheckBrowser(cfg *config.Config) Status {
	status := Status{
		Name:        "Browser",
		Description: "Chromium-based browser controlled by the bridge",
		Optional:    !cfg.Bridge.LaunchBrowser || cfg.Bridge.BrowserURL != "",
	}
	path, found := browserLookup()
	if !found {
		status.Detail = "no Chrome or Chromium installation found"
		return status
	}
	status.Command = path
	status.Available = true
	return status
}

// Check runs every check for cfg.
func Check(cfg *config.Config) []Status {
	results := CheckBinaries(Requirements(cfg))
	return append(results, CheckBrowser(cfg))
}
