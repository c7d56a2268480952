package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Spring Festival", "spring-festival"},
		{"accents", "Café Müller", "cafe-muller"},
		{"symbols", "Food & Drinks!!", "food-drinks"},
		{"hyphen runs", "a -- b", "a-b"},
		{"trim", " -edges- ", "edges"},
		{"empty", "", ""},
		{"all symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyTransliterates(t *testing.T) {
	// Korean titles transliterate to a usable ASCII slug.
	got := Slugify("봄 축제")
	if got == "" {
		t.Fatal("Korean title produced an empty slug")
	}
	for _, r := range got {
		if !(r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			t.Fatalf("slug %q contains non-ASCII rune %q", got, r)
		}
	}
}

func TestSlugifyOr(t *testing.T) {
	if got := SlugifyOr("!!!", "event"); got != "event" {
		t.Errorf("SlugifyOr fallback = %q, want event", got)
	}
	if got := SlugifyOr("Picnic", "event"); got != "picnic" {
		t.Errorf("SlugifyOr = %q, want picnic", got)
	}
}
