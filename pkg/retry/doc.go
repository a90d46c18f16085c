// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff, used to
// handle transient failures when fetching schema text from remote admin endpoints
// and during component startup.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 10 attempts, 50ms-1s delay (startup prefetch)
//
// # Usage Examples
//
// Fetch with retry and result:
//
//	text, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (string, error) {
//	    return source.Fetch(ctx)
//	})
//
// Mark an error as non-retryable so a 4xx response fails fast:
//
//	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
//	    return retry.NonRetryable(fmt.Errorf("schema endpoint returned %d", resp.StatusCode))
//	}
//
// # Design Philosophy
//
// This package is intentionally minimal:
//
//   - No circuit breakers
//   - No metrics collection (instrument at the call site)
//   - No error classification (the errors package decides what to retry)
//   - Just exponential backoff with jitter
//
// # Context Cancellation
//
// All retry operations respect context cancellation and stop retrying
// immediately, whether cancellation arrives during the operation or during a
// backoff delay.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The jitter mechanism uses a
// thread-safe random source to avoid contention.
package retry
