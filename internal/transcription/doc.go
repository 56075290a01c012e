// Package transcription coordinates the speech-to-text stage: duplicate-run
// guards, provider dispatch, transcript persistence, and the transcription
// status column.
package transcription
