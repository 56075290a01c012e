// Package provider supplies the shared HTTP plumbing for the external
// speech and vision services: bearer-authenticated JSON requests with
// exponential-backoff retries on transient failures.
package provider
