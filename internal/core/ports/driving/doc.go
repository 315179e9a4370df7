// Package driving defines the driving (primary) ports of the calendar
// engine: the contracts the CLI and other frontends call into.
package driving
