package resolver

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"jellypot/internal/logging"
	"jellypot/internal/services"
)

// Item types that resolve to a different item.
const (
	TypeSeries = "Series"
	TypeSeason = "Season"
	TypeBoxSet = "BoxSet"
)

// ErrInvalidReference reports a location fragment without a usable item id.
var ErrInvalidReference = services.Wrap(services.ErrValidation, "resolver", "parse reference", "no item id in location", nil)

// ItemRef is the id of the item on the current detail page.
type ItemRef string

// Item is the minimal descriptor the host API returns for a media item.
type Item struct {
	ID   string
	Name string
	Type string
}

// ItemList is a listing response such as next-up episodes or children.
type ItemList struct {
	Items []Item
}

// HostAPI exposes the host media server calls used for resolution.
type HostAPI interface {
	CurrentUserID(ctx context.Context) (string, error)
	GetItem(ctx context.Context, userID, itemID string) (Item, error)
	NextUp(ctx context.Context, seriesID, userID string) (ItemList, error)
	Children(ctx context.Context, userID, parentID string) (ItemList, error)
}

// Result is the outcome of a resolution.
type Result struct {
	// ID is the item to launch.
	ID string
	// Source is the item the resolution started from.
	Source ItemRef
	// SourceType is the type reported for Source.
	SourceType string
	// Fallback is set when a listing came back empty and ID is the source item.
	Fallback bool
}

var refPattern = regexp.MustCompile(`\?id=(\w*)`)

// ParseItemRef extracts the item id from a location fragment such as
// "#!/details?id=abc123&serverId=x".
func ParseItemRef(fragment string) (ItemRef, error) {
	match := refPattern.FindStringSubmatch(fragment)
	if match == nil || match[1] == "" {
		return "", ErrInvalidReference
	}
	return ItemRef(match[1]), nil
}

// Resolver applies the resolution rules against a HostAPI. It keeps no state
// between calls.
type Resolver struct {
	api    HostAPI
	logger *slog.Logger
}

// New constructs a Resolver.
func New(api HostAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		logger: logging.NewComponentLogger(logger, "resolver"),
	}
}

// ResolveFragment parses the fragment and resolves the referenced item.
func (r *Resolver) ResolveFragment(ctx context.Context, fragment string) (Result, error) {
	ref, err := ParseItemRef(fragment)
	if err != nil {
		return Result{}, err
	}
	return r.Resolve(ctx, ref)
}

// Resolve returns the playable item for ref.
func (r *Resolver) Resolve(ctx context.Context, ref ItemRef) (Result, error) {
	if strings.TrimSpace(string(ref)) == "" {
		return Result{}, ErrInvalidReference
	}
	itemID := string(ref)
	ctx = services.WithItemID(ctx, itemID)
	logger := logging.WithContext(ctx, r.logger)

	userID, err := r.api.CurrentUserID(ctx)
	if err != nil {
		return Result{}, upstream("current user", err)
	}
	item, err := r.api.GetItem(ctx, userID, itemID)
	if err != nil {
		return Result{}, upstream("get item", err)
	}

	result := Result{ID: itemID, Source: ref, SourceType: item.Type}

	var (
		list      ItemList
		operation string
	)
	switch {
	case sameType(item.Type, TypeSeries):
		operation = "next up"
		list, err = r.api.NextUp(ctx, itemID, userID)
	case sameType(item.Type, TypeSeason), sameType(item.Type, TypeBoxSet):
		operation = "children"
		list, err = r.api.Children(ctx, userID, itemID)
	default:
		logger.Debug("item resolved to itself", logging.String("item_type", item.Type))
		return result, nil
	}
	if err != nil {
		return Result{}, upstream(operation, err)
	}

	if len(list.Items) == 0 || list.Items[0].ID == "" {
		empty := services.Wrap(services.ErrNotFound, "resolver", operation, "listing returned no items", nil)
		logging.WarnWithContext(logger, "empty listing, launching original item",
			"resolve_fallback",
			logging.String("item_type", item.Type),
			logging.Error(empty),
			logging.String(logging.FieldImpact, "the container item is launched instead of a playable child"),
			logging.String(logging.FieldErrorHint, "check that the item has playable children"),
		)
		result.Fallback = true
		return result, nil
	}

	result.ID = list.Items[0].ID
	logger.Debug("item resolved",
		logging.String("item_type", item.Type),
		logging.String("resolved_id", result.ID),
	)
	return result, nil
}

// sameType compares item types case-insensitively, so "series" from an older
// server still matches; the web client itself compares exactly. A Caser is
// stateful, so each comparison gets its own.
func sameType(got, want string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(got)) == fold.String(want)
}

func upstream(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrUpstream, "resolver", operation, "host api call failed", err)
}
