// Package detail decides when the external-player button belongs on the
// Jellyfin item detail page and keeps it there.
//
// The host web client re-renders the page without any hook we can subscribe
// to, so the Injector polls: each tick takes a DOM snapshot, asks Plan what
// to do, and inserts the button only when it is missing and the resume button
// it anchors to exists. Plan and the selectors are pure functions over a
// parsed snapshot so the insert-once guarantee can be tested without a
// browser.
package detail
