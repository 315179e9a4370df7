// Package retry provides the resilience primitives used by the
// calendar fetcher: exponential backoff with jitter, bounded retries,
// and an order-preserving bounded-concurrency task runner with minimum
// spacing between task starts.
//
// Nothing in this package panics past its boundary; every task's fate
// is captured in an Outcome that callers must inspect.
package retry
