// Package daemon combines the catalog store, workflow processor, and HTTP
// API into a single lifecycle with flock-based locking to prevent multiple
// instances from sharing a data directory.
package daemon
