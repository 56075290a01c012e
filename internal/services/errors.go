package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks lookups for videos or transcripts that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyInProgress marks a start request for a stage already running.
	ErrAlreadyInProgress = errors.New("already in progress")
	// ErrAlreadyCompleted marks a start request for a stage that finished and
	// was not asked to redo anything.
	ErrAlreadyCompleted = errors.New("already completed")
	// ErrNoValidLanguages marks a transcription request whose language set is
	// empty after filtering to provider-supported codes.
	ErrNoValidLanguages = errors.New("no valid languages")
	// ErrNothingToProcess marks a combined-processing request where both
	// stages are already running or completed.
	ErrNothingToProcess = errors.New("nothing to process")
	// ErrProviderFailure marks any failure reported by an external provider.
	ErrProviderFailure = errors.New("provider failure")
	// ErrValidation marks malformed client input.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrProviderFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsConflict reports whether an error represents a state conflict the client
// must resolve by waiting or polling rather than by changing the request.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyInProgress) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrNothingToProcess)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
