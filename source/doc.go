// Package source supplies schema documents to the rest of the platform.
//
// Three implementations cover the supported deployment shapes:
//
//   - Static serves a fixed document from memory.
//   - File re-reads a document from disk on every fetch, so edits are
//     visible to polling.
//   - HTTP fetches from a remote endpoint with retry on transient
//     failures and a size cap on the response body.
//
// FromConfig selects an implementation from the source section of the
// application configuration.
//
// The Poller service wraps any Source, fetches on a fixed interval, and
// invokes a callback when the document's content hash changes. The
// first successful fetch always fires the callback, which seeds
// consumers with an initial schema. Fetch failures mark the poller
// unhealthy but leave the previously delivered schema in place.
package source
