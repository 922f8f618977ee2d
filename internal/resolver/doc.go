// Package resolver turns the item shown on a detail page into the item that
// should actually be played.
//
// A series resolves to its next-up episode, a season or collection to its
// first child, and anything else to itself. Data comes from a HostAPI so the
// same rules run against the page's own API client or against the Jellyfin
// HTTP API.
package resolver
