// Package launcher hands a custom-scheme URL to whatever application the
// operating system has registered for it.
//
// Dispatch is one-way. A successful Launch means the URL was handed over,
// not that any application received it.
package launcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"jellypot/internal/logging"
	"jellypot/internal/services"
)

// DefaultScheme is the scheme the bundled handler registers.
const DefaultScheme = "jellypot"

// DefaultCleanup is how long a launch frame stays attached.
const DefaultCleanup = 100 * time.Millisecond

// Launcher dispatches a launch URL.
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// BuildURL returns "<scheme>://<id>".
func BuildURL(scheme, id string) string {
	return scheme + "://" + id
}

// FrameHost attaches and detaches hidden frames in the page. Frames are
// addressed by the id chosen by the caller.
type FrameHost interface {
	AppendFrame(ctx context.Context, id, src string) error
	RemoveFrame(ctx context.Context, id string) error
}

// FrameLauncher launches by attaching a hidden frame whose source is the
// launch URL, which makes the browser hand the scheme to the OS.
type FrameLauncher struct {
	host    FrameHost
	cleanup time.Duration
	logger  *slog.Logger

	// afterFunc schedules the frame removal. Tests replace it.
	afterFunc func(time.Duration, func()) *time.Timer
	newID     func() string
}

// NewFrameLauncher constructs a FrameLauncher removing frames after cleanup.
func NewFrameLauncher(host FrameHost, cleanup time.Duration, logger *slog.Logger) *FrameLauncher {
	if cleanup < 0 {
		cleanup = DefaultCleanup
	}
	return &FrameLauncher{
		host:      host,
		cleanup:   cleanup,
		logger:    logging.NewComponentLogger(logger, "launcher"),
		afterFunc: time.AfterFunc,
		newID:     func() string { return "jellypot-frame-" + uuid.NewString() },
	}
}

// Launch appends the frame and returns. The frame is removed once the cleanup
// delay has passed, independently of ctx. Removal is scheduled even when the
// append reports an error, since the page may have attached the frame before
// the call failed.
func (l *FrameLauncher) Launch(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return services.Wrap(services.ErrValidation, "launcher", "launch", "empty launch url", nil)
	}
	id := l.newID()
	logger := logging.WithContext(ctx, l.logger)
	appendErr := l.host.AppendFrame(ctx, id, url)

	// Removal gets its own context: a cancelled activation must not leave
	// the frame behind.
	l.afterFunc(l.cleanup, func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.host.RemoveFrame(removeCtx, id); err != nil {
			logger.Debug("launch frame removal failed", logging.String("frame", id), logging.Error(err))
		}
	})

	if appendErr != nil {
		return services.Wrap(services.ErrTransient, "launcher", "append frame", url, appendErr)
	}
	logger.Debug("launch frame attached", logging.String("url", url), logging.String("frame", id))
	return nil
}
