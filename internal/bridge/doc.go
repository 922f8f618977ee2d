// Package bridge connects the detail-page injector, the resolver and the
// launcher to one browser page.
//
// The injector loop and the activation loop run side by side. Every click
// becomes its own goroutine with its own correlation id, so a double click
// yields two independent resolutions and launches.
package bridge
