// Package query is the read-only surface of the pipeline: composed per-video
// status and relevance-scored search across titles, descriptions,
// transcripts, and tags.
package query
