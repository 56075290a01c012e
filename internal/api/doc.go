// Package api exposes the pipeline over HTTP: video registration, stage
// starts, composed status, search, and health. Callers are identified by an
// owner header supplied by the surrounding application.
package api
