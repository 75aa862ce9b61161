// Package retry provides a bounded exponential backoff helper for the
// outbound HTTP calls to the Hub and Tracker APIs.
//
// Only errors explicitly marked with Transient are retried. HTTP responses
// with error status codes are not transient: they surface immediately as a
// per-item failure and are left for the next sync cycle.
package retry
