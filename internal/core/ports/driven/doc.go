// Package driven defines the driven (secondary) ports of the calendar
// engine: interfaces the core needs implemented by adapters, such as
// key-value persistence, token storage, the OAuth client, and the
// event fetcher. Adapters import this package; the core never imports
// adapters.
package driven
