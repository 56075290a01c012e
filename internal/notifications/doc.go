// Package notifications publishes pipeline events to an ntfy topic when one
// is configured, and degrades to a noop service otherwise.
package notifications
