package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"jellypot/internal/config"
	"jellypot/internal/logging"
	"jellypot/internal/protocol"
	"jellypot/internal/services"
	"jellypot/internal/services/jellyfin"
)

// MediaServer is the subset of the Jellyfin client a session uses.
type MediaServer interface {
	Authenticate(ctx context.Context) error
	GetItem(ctx context.Context, itemID string) (jellyfin.MediaItem, error)
	StreamURL(ctx context.Context, itemID string) (string, error)
	ReportPlaying(ctx context.Context, event jellyfin.PlaybackEvent) error
	ReportProgress(ctx context.Context, event jellyfin.PlaybackEvent) error
	ReportStopped(ctx context.Context, event jellyfin.PlaybackEvent) error
}

// ExclusiveFunc makes the caller the only running handler. The returned
// context ends when a newer handler takes over; release gives up the claim.
type ExclusiveFunc func(ctx context.Context) (context.Context, func(), error)

// Options configures a Session.
type Options struct {
	Config    *config.Config
	Server    MediaServer
	Start     Starter
	Probe     PositionProbe
	Exclusive ExclusiveFunc
	Logger    *slog.Logger
}

// Summary describes a finished session.
type Summary struct {
	ItemID      string
	Title       string
	Last        Position
	Reports     int
	Interrupted bool
	// Elapsed is the wall time between player start and exit.
	Elapsed time.Duration
}

// Describe renders the summary for the terminal, e.g.
// "Pilot: stopped at 12m30s after 3 minutes".
func (s Summary) Describe() string {
	verb := "stopped"
	if s.Interrupted {
		verb = "interrupted"
	}
	title := s.Title
	if title == "" {
		title = s.ItemID
	}
	var zero time.Time
	took := strings.TrimSpace(humanize.RelTime(zero, zero.Add(s.Elapsed), "", ""))
	return fmt.Sprintf("%s: %s at %s after %s", title, verb, s.Last.Time.Truncate(time.Second), took)
}

// Session plays one launch URL.
type Session struct {
	cfg       *config.Config
	server    MediaServer
	start     Starter
	probe     PositionProbe
	exclusive ExclusiveFunc
	logger    *slog.Logger
	now       func() time.Time

	startupDelay   time.Duration
	reportInterval time.Duration
}

// NewSession constructs a Session. A nil Probe is replaced by an mpv probe
// when player.mpv_ipc is set.
func NewSession(opts Options) *Session {
	start := opts.Start
	if start == nil {
		start = ExecStarter
	}
	probe := opts.Probe
	if probe == nil && opts.Config.Player.MPVIPC {
		probe = NewMPVProbe(IPCPath(opts.Config.Paths.StateDir))
	}
	return &Session{
		cfg:       opts.Config,
		server:    opts.Server,
		start:     start,
		probe:     probe,
		exclusive: opts.Exclusive,
		logger:    logging.NewComponentLogger(opts.Logger, "playback"),
		now:       time.Now,

		startupDelay:   opts.Config.StartupDelay(),
		reportInterval: opts.Config.ReportInterval(),
	}
}

// Run plays the item named by rawURL until the player exits or ctx ends.
func (s *Session) Run(ctx context.Context, rawURL string) (Summary, error) {
	itemID, err := protocol.ParseLaunchURL(s.cfg.Bridge.Scheme, rawURL)
	if err != nil {
		return Summary{}, err
	}
	ctx = services.WithItemID(ctx, itemID)
	logger := logging.WithContext(ctx, s.logger)
	summary := Summary{ItemID: itemID}

	if err := s.server.Authenticate(ctx); err != nil {
		return summary, err
	}
	logger.Info("authenticated with jellyfin", logging.String("server", s.cfg.Jellyfin.URL))

	item, err := s.server.GetItem(ctx, itemID)
	if err != nil {
		return summary, err
	}
	summary.Title = item.DisplayTitle()
	logger.Info("media item loaded",
		logging.String("title", summary.Title),
		logging.String("item_type", item.Type),
		logging.Duration("resume_at", item.ResumePosition()))

	runCtx := ctx
	if s.exclusive != nil {
		exclusiveCtx, release, err := s.exclusive(ctx)
		if err != nil {
			return summary, err
		}
		defer release()
		runCtx = exclusiveCtx
	}

	stream, err := s.server.StreamURL(ctx, itemID)
	if err != nil {
		return summary, err
	}
	ipcPath := ""
	if s.cfg.Player.MPVIPC {
		ipcPath = IPCPath(s.cfg.Paths.StateDir)
	}
	argv := BuildCommand(s.cfg.Player, CommandInput{
		StreamURL: stream,
		Title:     summary.Title,
		Start:     item.ResumePosition(),
		IPCPath:   ipcPath,
	})

	proc, err := s.start(argv)
	if err != nil {
		return summary, services.Wrap(services.ErrExternalTool, "playback", "start player", s.cfg.Player.Path, err)
	}
	started := s.now()
	logger.Info("player started", logging.String("player", s.cfg.Player.Path), logging.Int("pid", proc.PID()))

	base := jellyfin.PlaybackEvent{
		ItemID:                 itemID,
		MediaSourceID:          item.MediaSourceID(),
		PlaybackStartTimeTicks: started.UnixNano() / 100,
		PlayMethod:             jellyfin.PlayMethodDirect,
		CanSeek:                true,
	}
	summary.Last = Position{Time: item.ResumePosition()}
	playing := base
	playing.PositionTicks = jellyfin.DurationToTicks(summary.Last.Time)
	if err := s.server.ReportPlaying(ctx, playing); err != nil {
		s.warnReport(logger, "playing", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- proc.Wait() }()

	summary.Reports, summary.Interrupted = s.monitor(runCtx, logger, proc, exited, base, &summary.Last)

	stopped := base
	stopped.PositionTicks = jellyfin.DurationToTicks(summary.Last.Time)
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.server.ReportStopped(stopCtx, stopped); err != nil {
		s.warnReport(logger, "stopped", err)
	}

	summary.Elapsed = s.now().Sub(started)
	logger.Info("playback finished",
		logging.String("title", summary.Title),
		logging.Duration("position", summary.Last.Time),
		logging.Int("reports", summary.Reports),
		logging.Bool("interrupted", summary.Interrupted),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

// monitor reports progress until the player exits or ctx ends, in which
// case the player is killed. It returns the number of progress reports and
// whether the session was cut short.
func (s *Session) monitor(ctx context.Context, logger *slog.Logger, proc Process, exited <-chan error, base jellyfin.PlaybackEvent, last *Position) (int, bool) {
	interval := s.reportInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	delay := time.NewTimer(s.startupDelay)
	defer delay.Stop()
	var tick <-chan time.Time
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	reports := 0
	for {
		select {
		case err := <-exited:
			if err != nil {
				logger.Debug("player exited with error", logging.Error(err))
			}
			return reports, false
		case <-ctx.Done():
			logger.Info("stopping player", logging.String("reason", context.Cause(ctx).Error()))
			if err := proc.Kill(); err != nil {
				logger.Debug("kill player failed", logging.Error(err))
			}
			<-exited
			return reports, true
		case <-delay.C:
			ticker = time.NewTicker(interval)
			tick = ticker.C
			if s.report(ctx, logger, base, last) {
				reports++
			}
		case <-tick:
			if s.report(ctx, logger, base, last) {
				reports++
			}
		}
	}
}

func (s *Session) report(ctx context.Context, logger *slog.Logger, base jellyfin.PlaybackEvent, last *Position) bool {
	if s.probe == nil {
		return false
	}
	pos, err := s.probe.Probe(ctx)
	if err != nil {
		if !errors.Is(err, ErrPositionUnavailable) {
			logger.Debug("position probe failed", logging.Error(err))
		}
		return false
	}
	*last = pos

	event := base
	event.PositionTicks = jellyfin.DurationToTicks(pos.Time)
	event.IsPaused = pos.Paused
	event.EventName = jellyfin.EventTimeUpdate
	if pos.Paused {
		event.EventName = jellyfin.EventPause
	}
	if err := s.server.ReportProgress(ctx, event); err != nil {
		s.warnReport(logger, "progress", err)
		return false
	}
	logger.Debug("progress reported", logging.String("event", event.EventName), logging.Duration("position", pos.Time))
	return true
}

func (s *Session) warnReport(logger *slog.Logger, kind string, err error) {
	logging.WarnWithContext(logger, "playback report failed", "playback_report_failed",
		logging.String("report", kind),
		logging.Error(err),
		logging.String(logging.FieldImpact, "jellyfin may show a stale position for this item"),
		logging.String(logging.FieldErrorHint, "check the jellyfin server connection"))
}
