// Package instance keeps a single protocol handler running per user.
//
// The newest handler wins. A starting handler that finds the lock held asks
// the holder to exit over a JSON-RPC Unix socket and waits for the lock to
// be released; the holder's context is cancelled, which stops its player and
// reports playback as stopped before it lets go.
package instance
