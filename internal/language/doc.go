// Package language canonicalizes BCP-47 language codes and filters requested
// codes against a provider's supported set. Malformed or unsupported codes
// are dropped silently; deciding whether an empty result is an error belongs
// to the caller.
package language
