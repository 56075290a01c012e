package language_test

import (
	"testing"

	"clipline/internal/language"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en-US", "en-US", true},
		{"en_us", "en-US", true},
		{" ES-es ", "es-ES", true},
		{"de", "de", true},
		{"", "", false},
		{"not a tag", "", false},
	}
	for _, tc := range cases {
		got, ok := language.Canonical(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Canonical(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFilterDropsUnsupported(t *testing.T) {
	supported := []string{"en-US", "es-ES", "fr-FR"}

	got := language.Filter([]string{"en-US", "xx-ZZ"}, supported)
	if len(got) != 1 || got[0] != "en-US" {
		t.Fatalf("expected only en-US to survive, got %#v", got)
	}

	if got := language.Filter([]string{"xx-ZZ"}, supported); len(got) != 0 {
		t.Fatalf("expected empty result for unsupported-only request, got %#v", got)
	}
}

func TestFilterNormalizesAndDeduplicates(t *testing.T) {
	supported := []string{"en-US", "es-ES"}
	got := language.Filter([]string{"EN_us", "en-US", "es-es"}, supported)
	if len(got) != 2 || got[0] != "en-US" || got[1] != "es-ES" {
		t.Fatalf("unexpected filter result: %#v", got)
	}
}

func TestEqualIgnoresOrderAndCase(t *testing.T) {
	if !language.Equal([]string{"en-US", "es-ES"}, []string{"ES-es", "en_us"}) {
		t.Fatal("expected sets to compare equal")
	}
	if language.Equal([]string{"en-US"}, []string{"en-US", "es-ES"}) {
		t.Fatal("expected different sets to compare unequal")
	}
}
