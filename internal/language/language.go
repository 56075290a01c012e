package language

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Canonical normalizes a caller-supplied language spec ("en-us", "EN_US",
// " en-US ") to its canonical BCP-47 form. Returns false for unparseable
// input rather than an error so callers can silently drop bad codes.
func Canonical(code string) (string, bool) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if trimmed == "" {
		return "", false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// Filter canonicalizes the requested codes and keeps the subset present in
// supported (itself canonicalized). Unsupported or malformed codes are
// dropped, order is normalized, and duplicates collapse.
func Filter(requested, supported []string) []string {
	supportedSet := make(map[string]struct{}, len(supported))
	for _, code := range supported {
		if canonical, ok := Canonical(code); ok {
			supportedSet[canonical] = struct{}{}
		}
	}

	kept := make(map[string]struct{})
	for _, code := range requested {
		canonical, ok := Canonical(code)
		if !ok {
			continue
		}
		if _, ok := supportedSet[canonical]; ok {
			kept[canonical] = struct{}{}
		}
	}

	result := make([]string, 0, len(kept))
	for code := range kept {
		result = append(result, code)
	}
	sort.Strings(result)
	return result
}

// Equal reports whether two language sets are the same after
// canonicalization, ignoring order and duplicates.
func Equal(a, b []string) bool {
	return setKey(a) == setKey(b)
}

func setKey(codes []string) string {
	canonical := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		normalized, ok := Canonical(code)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		canonical = append(canonical, normalized)
	}
	sort.Strings(canonical)
	return strings.Join(canonical, "\x00")
}
