// Package catalog persists videos, transcripts, and tags in SQLite and owns
// the stage-status semantics of the processing pipeline.
//
// A video carries two independent stage statuses (transcription, vision).
// BeginStage performs the conditional flip to processing in a single UPDATE,
// which is the only mutual-exclusion mechanism for concurrent starts; stage
// coordinators never read-then-write status. Transcripts are at most one row
// per video in either a single-language or multilingual representation, and
// tags are bulk-replaced per vision run. Both cascade away when their video
// is removed.
//
// The database is the source of truth for "has this stage run, and did it
// succeed". Schema changes bump the version in schema.go; users delete the
// database to adopt the new schema.
package catalog
