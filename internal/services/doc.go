// Package services defines shared utilities consumed by the bridge, the
// playback handler and the Jellyfin integration.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, component names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified (invalid reference, not found, upstream) without string
//     matching.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the binary.
package services
