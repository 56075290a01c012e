// Package logging constructs the process-wide slog logger and provides
// attribute helpers shared across components.
//
// Loggers write to stdout/stderr and, when a log directory is configured, to
// clipline.log inside it. Components derive child loggers via
// NewComponentLogger so every record carries a stable component attribute.
package logging
