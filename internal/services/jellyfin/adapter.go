package jellyfin

import (
	"context"

	"jellypot/internal/resolver"
)

// HostAdapter exposes a Client as a resolver.HostAPI so the resolution rules
// can run outside the browser.
type HostAdapter struct {
	Client *Client
}

func (a HostAdapter) CurrentUserID(ctx context.Context) (string, error) {
	return a.Client.UserID(ctx)
}

func (a HostAdapter) GetItem(ctx context.Context, userID, itemID string) (resolver.Item, error) {
	item, err := a.Client.GetUserItem(ctx, userID, itemID)
	if err != nil {
		return resolver.Item{}, err
	}
	return toResolverItem(item), nil
}

func (a HostAdapter) NextUp(ctx context.Context, seriesID, userID string) (resolver.ItemList, error) {
	resp, err := a.Client.NextUp(ctx, seriesID, userID)
	if err != nil {
		return resolver.ItemList{}, err
	}
	return toResolverList(resp), nil
}

func (a HostAdapter) Children(ctx context.Context, userID, parentID string) (resolver.ItemList, error) {
	resp, err := a.Client.Children(ctx, userID, parentID)
	if err != nil {
		return resolver.ItemList{}, err
	}
	return toResolverList(resp), nil
}

func toResolverItem(item MediaItem) resolver.Item {
	return resolver.Item{ID: item.ID, Name: item.Name, Type: item.Type}
}

func toResolverList(resp ItemsResponse) resolver.ItemList {
	list := resolver.ItemList{Items: make([]resolver.Item, 0, len(resp.Items))}
	for _, item := range resp.Items {
		list.Items = append(list.Items, toResolverItem(item))
	}
	return list
}

var _ resolver.HostAPI = HostAdapter{}
