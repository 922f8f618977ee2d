package playback

import (
	"strconv"
	"strings"
	"time"

	"jellypot/internal/config"
)

// CommandInput is what a player command line is built from.
type CommandInput struct {
	StreamURL string
	Title     string
	Start     time.Duration
	// IPCPath enables mpv's JSON IPC server when non-empty.
	IPCPath string
}

// BuildCommand renders the player argv. {url}, {title} and {seconds} are
// substituted in every argument. When no argument mentions {url} the stream
// URL is passed first, which both mpv and PotPlayer accept.
func BuildCommand(player config.Player, in CommandInput) []string {
	seconds := strconv.FormatInt(int64(in.Start/time.Second), 10)
	expand := func(arg string) string {
		return strings.NewReplacer("{url}", in.StreamURL, "{title}", in.Title, "{seconds}", seconds).Replace(arg)
	}

	argv := []string{player.Path}
	hasURL := false
	for _, arg := range player.Args {
		if strings.Contains(arg, "{url}") {
			hasURL = true
		}
	}
	if !hasURL {
		argv = append(argv, in.StreamURL)
	}
	for _, arg := range player.Args {
		argv = append(argv, expand(arg))
	}
	if player.TitleArg != "" && in.Title != "" {
		argv = append(argv, expand(player.TitleArg))
	}
	if player.StartArg != "" && in.Start >= time.Second {
		argv = append(argv, expand(player.StartArg))
	}
	if in.IPCPath != "" {
		argv = append(argv, "--input-ipc-server="+in.IPCPath)
	}
	return argv
}
