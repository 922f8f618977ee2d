// Package playback runs the protocol handler: it opens a Jellyfin item in
// an external player and keeps the server informed about playback.
//
// A Session reports Playing when the player starts, periodic Progress while
// a position probe can read the player's position, and Stopped once the
// player exits or the session is replaced by a newer launch. Without a probe
// no progress is reported rather than guessing positions.
package playback
