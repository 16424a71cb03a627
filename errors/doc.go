// Package errors provides standardized error handling patterns for GraphBridge.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (transport failures), Invalid (bad input or configuration, do not
// retry), and Fatal (session unusable, stop issuing operations).
//
// Classification integrates with Go's standard error handling, supporting
// errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Taxonomy
//
//   - Configuration errors (ErrMissingConfig, ErrInvalidConfig, use after
//     ErrSessionTerminated): Invalid or Fatal, never retried.
//   - Transport errors (network failure, non-2xx status, undecodable body):
//     Transient class, surfaced as a single error value. The client does not
//     retry them unless the transport is explicitly configured to (see the
//     retry package): replaying a partially applied batch is unsafe without
//     idempotency keys.
//   - Term construction errors are raised synchronously at the call site,
//     before anything is queued or sent (see the term package).
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "HTTPDoer", "Do", "post envelope")
//	errors.WrapInvalid(err, "Session", "Open", "validate config")
//	errors.WrapFatal(err, "Bridge", "Call", "worker gone")
//
// # Standard Error Variables
//
// Use the pre-defined variables instead of ad-hoc messages so callers can
// test conditions with errors.Is:
//
//	if errors.Is(err, errors.ErrSessionTerminated) {
//	    // session was closed; stop issuing operations
//	}
package errors
