// Package main hosts the jellypot CLI entrypoint and command graph.
//
// The Cobra command tree covers both halves of the bridge: `jellypot bridge`
// attaches to the browser running the Jellyfin web client and injects the
// launch button, while `jellypot open` (or a bare `jellypot jellypot://<id>`,
// the command line the operating system runs for the registered scheme)
// plays the item in the external player. The remaining commands register the
// scheme, store credentials, check dependencies and scaffold configuration.
//
// Commands only wire internal packages together; behaviour lives in
// internal/.
package main
