// Package jellyfin is a small client for the Jellyfin HTTP API.
//
// It covers what the protocol handler and the out-of-browser resolver need:
// username/password authentication, item lookups, next-up and child
// listings, and session playback reporting. Authentication is lazy and a 401
// response drops the token so the next call signs in again.
package jellyfin
