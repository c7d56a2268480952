package i18n

import (
	"testing"
)

func TestInit(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, lang := range SupportedLanguages {
		if TranslationCount(lang) == 0 {
			t.Errorf("expected %s translations to be loaded", lang)
		}
	}
}

func TestT(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		lang     string
		key      string
		args     []any
		expected string
	}{
		{"en", "main.add_event", nil, "Add Event"},
		{"ko", "main.add_event", nil, "이벤트 추가"},
		{"en", "main.cancel", nil, "Cancel"},
		{"ko", "main.cancel", nil, "취소"},
		{"en", "detail.delete_check", []any{"Picnic"}, "Delete event 'Picnic'?"},
		// Fallback to the default language for unknown language
		{"de", "main.cancel", nil, "취소"},
		// Return key if not found
		{"en", "nonexistent.key", nil, "nonexistent.key"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.key, func(t *testing.T) {
			result := T(tt.lang, tt.key, tt.args...)
			if result != tt.expected {
				t.Errorf("T(%q, %q, %v) = %q, want %q", tt.lang, tt.key, tt.args, result, tt.expected)
			}
		})
	}
}

func TestMatchLanguage(t *testing.T) {
	if err := Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := []struct {
		accept   string
		expected string
	}{
		{"ko", "ko"},
		{"en", "en"},
		{"mn", "mn"},
		{"en-US,en;q=0.9", "en"},
		{"ko-KR", "ko"},
		{"", "ko"},
		{"xx-invalid", "ko"},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			if got := MatchLanguage(tt.accept); got != tt.expected {
				t.Errorf("MatchLanguage(%q) = %q, want %q", tt.accept, got, tt.expected)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"ko", true},
		{"en", true},
		{"mn", true},
		{"KO", true},
		{"fr", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSupported(tt.lang); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.lang, got, tt.want)
		}
	}
}
