// Package services defines the error taxonomy shared by the stage
// coordinators, the workflow processor, and the HTTP surface, plus the
// provider clients in its subpackages.
//
// Errors are tagged with sentinel markers via Wrap so callers classify with
// errors.Is instead of string matching. Provider subpackages (speech, vision)
// wrap every upstream failure in ErrProviderFailure; the coordinators decide
// what that means for stage status.
package services
