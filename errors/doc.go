// Package errors provides standardized error handling patterns for SchemaScope components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// Classification lets components make informed decisions about retries and
// failure recovery without hardcoded error string matching. A failed schema
// fetch is transient and retried; malformed SDL is invalid and surfaced to the
// caller with the prior diagram state intact; a broken configuration is fatal
// and stops startup.
//
// # Error Classification
//
//   - Transient: source fetch timeouts, lost sessions, temporary unavailability (retry recommended)
//   - Invalid: malformed SDL, validation failures, unknown type references (do not retry)
//   - Fatal: bad configuration, shutdown timeouts, unrecoverable states (stop processing)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if model.NodeCount() == 0 {
//	    return errors.ErrEmptyGraph
//	}
//
// Wrap errors with component context:
//
//	doc, err := parser.Parse(text)
//	if err != nil {
//	    return errors.WrapInvalid(err, "SchemaParser", "Parse", "parse normalized SDL")
//	}
//
// Check classification for retry logic:
//
//	if err := source.Fetch(ctx); err != nil {
//	    if errors.IsTransient(err) {
//	        // retry with backoff
//	    } else if errors.IsFatal(err) {
//	        // stop, escalate to operator
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// The generic Wrap() applies the format without forcing a class, preserving
// whatever classification the wrapped error already carries.
//
// # Retry Configuration
//
// RetryConfig pairs classification with backoff policy and converts to the
// retry package's Config for execution:
//
//	cfg := errors.DefaultRetryConfig()
//	text, err := retry.DoWithResult(ctx, cfg.ToRetryConfig(), func() (string, error) {
//	    return source.Fetch(ctx)
//	})
package errors
