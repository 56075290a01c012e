// Package workflow fans stage work out to the transcription and tagging
// coordinators and supervises the detached tasks that carry provider calls
// to a terminal status.
package workflow
