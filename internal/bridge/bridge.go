package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jellypot/internal/detail"
	"jellypot/internal/launcher"
	"jellypot/internal/logging"
	"jellypot/internal/resolver"
	"jellypot/internal/services"
)

// Activation is one click on the injected button.
type Activation struct {
	// Fragment is location.hash at click time.
	Fragment   string
	ReceivedAt time.Time
}

// ButtonState updates the button's visible state.
type ButtonState interface {
	SetButtonState(ctx context.Context, state, message string) error
}

// Page is everything the bridge needs from the browser page.
type Page interface {
	detail.Page
	ButtonState
	// Activations streams clicks until ctx is done.
	Activations(ctx context.Context) (<-chan Activation, error)
}

// Resolver maps a location fragment to the item to launch.
type Resolver interface {
	ResolveFragment(ctx context.Context, fragment string) (resolver.Result, error)
}

// Options configures a Bridge.
type Options struct {
	Page         Page
	Resolver     Resolver
	Launcher     launcher.Launcher
	Scheme       string
	Button       detail.ButtonSpec
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Outcome describes a finished activation.
type Outcome struct {
	CorrelationID string
	Result        resolver.Result
	URL           string
}

// Bridge serves one page.
type Bridge struct {
	page     Page
	injector *detail.Injector
	resolver Resolver
	launcher launcher.Launcher
	scheme   string
	title    string
	logger   *slog.Logger

	wg sync.WaitGroup
}

// New constructs a Bridge.
func New(opts Options) *Bridge {
	scheme := opts.Scheme
	if scheme == "" {
		scheme = launcher.DefaultScheme
	}
	return &Bridge{
		page:     opts.Page,
		injector: detail.NewInjector(opts.Page, opts.Button, opts.PollInterval, opts.Logger),
		resolver: opts.Resolver,
		launcher: opts.Launcher,
		scheme:   scheme,
		title:    opts.Button.Title,
		logger:   logging.NewComponentLogger(opts.Logger, "bridge"),
	}
}

// Run injects the button and serves activations until ctx is cancelled.
// Activations still in flight are waited for before Run returns.
func (b *Bridge) Run(ctx context.Context) error {
	activations, err := b.page.Activations(ctx)
	if err != nil {
		return services.Wrap(services.ErrTransient, "bridge", "subscribe activations", "install click binding", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return b.injector.Run(gctx)
	})
	group.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case act, ok := <-activations:
				if !ok {
					return errors.New("activation stream closed")
				}
				b.wg.Add(1)
				go func() {
					defer b.wg.Done()
					_, _ = b.Activate(gctx, act)
				}()
			}
		}
	})

	err = group.Wait()
	b.wg.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Activate handles one click: resolve, build the URL, launch. Failures the
// user can act on are shown on the button; launch success only means the URL
// was handed to the browser.
func (b *Bridge) Activate(ctx context.Context, act Activation) (Outcome, error) {
	outcome := Outcome{CorrelationID: uuid.NewString()}
	ctx = services.WithRequestID(ctx, outcome.CorrelationID)
	logger := logging.WithContext(ctx, b.logger)
	logger.Debug("activation received", logging.String("fragment", act.Fragment))

	b.setState(ctx, logger, detail.StateBusy, b.title)

	result, err := b.resolver.ResolveFragment(ctx, act.Fragment)
	if err != nil {
		b.fail(ctx, logger, "resolve", err)
		return outcome, err
	}
	outcome.Result = result
	outcome.URL = launcher.BuildURL(b.scheme, result.ID)

	if err := b.launcher.Launch(ctx, outcome.URL); err != nil {
		b.fail(ctx, logger, "launch", err)
		return outcome, err
	}

	logger.Info("launch dispatched",
		logging.String(logging.FieldItemID, string(result.Source)),
		logging.String("resolved_id", result.ID),
		logging.String("url", outcome.URL),
		logging.Bool("fallback", result.Fallback),
	)
	b.setState(ctx, logger, detail.StateIdle, b.title)
	return outcome, nil
}

func (b *Bridge) fail(ctx context.Context, logger *slog.Logger, stage string, err error) {
	if errors.Is(err, context.Canceled) {
		b.setState(ctx, logger, detail.StateIdle, b.title)
		return
	}
	attrs := []logging.Attr{
		logging.String("stage", stage),
		logging.String("error_kind", services.Kind(err)),
		logging.Error(err),
	}
	if errors.Is(err, services.ErrValidation) {
		logging.WarnWithContext(logger, "activation rejected", "activation_invalid",
			append(attrs,
				logging.String(logging.FieldImpact, "nothing was launched"),
				logging.String(logging.FieldErrorHint, "open the item detail page and try again"),
			)...)
	} else {
		logging.ErrorWithContext(logger, "activation failed", "activation_failed",
			append(attrs, logging.String(logging.FieldErrorHint, "check the Jellyfin server and browser session"))...)
	}
	if services.UserFacing(err) || errors.Is(err, services.ErrExternalTool) {
		b.setState(ctx, logger, detail.StateError, err.Error())
	}
}

func (b *Bridge) setState(ctx context.Context, logger *slog.Logger, state, message string) {
	if err := b.page.SetButtonState(context.WithoutCancel(ctx), state, message); err != nil {
		logger.Debug("button state update failed", logging.String("state", state), logging.Error(err))
	}
}
