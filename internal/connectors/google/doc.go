// Package google provides shared infrastructure for the Google
// Calendar API: service construction, token source adaptation, error
// classification, and request rate limiting.
package google
