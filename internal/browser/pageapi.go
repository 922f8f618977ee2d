package browser

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"jellypot/internal/resolver"
)

// evaluator runs a script in the page and returns its string result.
type evaluator interface {
	evalString(ctx context.Context, js string, args ...any) (string, error)
}

// PageAPI implements resolver.HostAPI with the web client's own ApiClient,
// so requests carry the logged-in user's session.
type PageAPI struct {
	ev evaluator
}

// NewPageAPI constructs a PageAPI for page.
func NewPageAPI(page *Page) *PageAPI {
	return &PageAPI{ev: page}
}

func (a *PageAPI) CurrentUserID(ctx context.Context) (string, error) {
	raw, err := a.ev.evalString(ctx, currentUserJS)
	if err != nil {
		return "", fmt.Errorf("read current user: %w", err)
	}
	id := gjson.Get(raw, "UserId").String()
	if id == "" {
		return "", fmt.Errorf("web client has no signed-in user")
	}
	return id, nil
}

func (a *PageAPI) GetItem(ctx context.Context, userID, itemID string) (resolver.Item, error) {
	raw, err := a.ev.evalString(ctx, getItemJS, userID, itemID)
	if err != nil {
		return resolver.Item{}, fmt.Errorf("getItem %s: %w", itemID, err)
	}
	if !gjson.Valid(raw) {
		return resolver.Item{}, fmt.Errorf("getItem %s: malformed response", itemID)
	}
	return decodeItem(gjson.Parse(raw)), nil
}

func (a *PageAPI) NextUp(ctx context.Context, seriesID, userID string) (resolver.ItemList, error) {
	raw, err := a.ev.evalString(ctx, nextUpJS, seriesID, userID)
	if err != nil {
		return resolver.ItemList{}, fmt.Errorf("getNextUpEpisodes %s: %w", seriesID, err)
	}
	return decodeItemList(raw)
}

func (a *PageAPI) Children(ctx context.Context, userID, parentID string) (resolver.ItemList, error) {
	raw, err := a.ev.evalString(ctx, childrenJS, userID, parentID)
	if err != nil {
		return resolver.ItemList{}, fmt.Errorf("getItems %s: %w", parentID, err)
	}
	return decodeItemList(raw)
}

func decodeItem(v gjson.Result) resolver.Item {
	return resolver.Item{
		ID:   v.Get("Id").String(),
		Name: v.Get("Name").String(),
		Type: v.Get("Type").String(),
	}
}

func decodeItemList(raw string) (resolver.ItemList, error) {
	if !gjson.Valid(raw) {
		return resolver.ItemList{}, fmt.Errorf("malformed listing response")
	}
	list := resolver.ItemList{}
	gjson.Get(raw, "Items").ForEach(func(_, value gjson.Result) bool {
		list.Items = append(list.Items, decodeItem(value))
		return true
	})
	return list, nil
}

var _ resolver.HostAPI = (*PageAPI)(nil)
