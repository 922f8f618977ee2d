package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"jellypot/internal/logging"
	"jellypot/internal/services"
)

// ExecLauncher passes the URL to the desktop opener. It is used when the
// browser does not dispatch custom schemes from frames, as headless Chrome
// does not.
type ExecLauncher struct {
	command []string
	logger  *slog.Logger

	// start runs the command without waiting for it. Tests replace it.
	start func(ctx context.Context, name string, args ...string) error
}

// OpenerCommand returns the desktop opener for goos.
func OpenerCommand(goos string) []string {
	switch goos {
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	case "darwin":
		return []string{"open"}
	default:
		return []string{"xdg-open"}
	}
}

// NewExecLauncher constructs a launcher using the opener for this platform.
func NewExecLauncher(logger *slog.Logger) *ExecLauncher {
	return &ExecLauncher{
		command: OpenerCommand(runtime.GOOS),
		logger:  logging.NewComponentLogger(logger, "launcher"),
		start:   startDetached,
	}
}

// Launch starts the opener and returns without waiting for it.
func (l *ExecLauncher) Launch(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return services.Wrap(services.ErrValidation, "launcher", "launch", "empty launch url", nil)
	}
	args := append(append([]string{}, l.command[1:]...), url)
	if err := l.start(ctx, l.command[0], args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "launcher", "exec opener", l.command[0], err)
	}
	l.logger.Debug("launch url handed to opener", logging.String("url", url), logging.String("opener", l.command[0]))
	return nil
}

func startDetached(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
