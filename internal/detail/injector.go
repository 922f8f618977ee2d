package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jellypot/internal/logging"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = time.Second

// Page is the DOM the injector works against.
type Page interface {
	// Snapshot returns the current document.
	Snapshot(ctx context.Context) (*Snapshot, error)
	// InsertButton places the button immediately before the anchor inside
	// the visible detail page and wires its click handler.
	InsertButton(ctx context.Context, spec ButtonSpec) error
}

// Injector keeps exactly one button on the visible detail page.
type Injector struct {
	page     Page
	spec     ButtonSpec
	interval time.Duration
	logger   *slog.Logger
}

// NewInjector constructs an injector ticking at interval.
func NewInjector(page Page, spec ButtonSpec, interval time.Duration, logger *slog.Logger) *Injector {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Injector{
		page:     page,
		spec:     spec,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "injector"),
	}
}

// Tick runs one check. Missing elements are not errors; only failures to
// talk to the page are returned.
func (i *Injector) Tick(ctx context.Context) (Action, error) {
	snap, err := i.page.Snapshot(ctx)
	if err != nil {
		return ActionWait, fmt.Errorf("snapshot page: %w", err)
	}
	action := Plan(snap)
	if action != ActionInsert {
		return action, nil
	}
	if err := i.page.InsertButton(ctx, i.spec); err != nil {
		return ActionWait, fmt.Errorf("insert button: %w", err)
	}
	i.logger.Debug("button inserted")
	return ActionInsert, nil
}

// Run ticks until ctx is cancelled. It never stops on its own: a failed
// tick is retried on the next one.
func (i *Injector) Run(ctx context.Context) error {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := i.Tick(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return ctx.Err()
				}
				i.logger.Debug("tick failed", logging.Error(err))
			}
		}
	}
}
