// Package services contains the core application services. Session is
// the authentication state machine composing the token store, OAuth
// client, and event fetcher behind the driving CalendarSession port.
package services
