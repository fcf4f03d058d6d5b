package i18n

import "testing"

func TestResolve_FallbackChain(t *testing.T) {
	locales := LocaleMap{"en": "English"}

	if got := Resolve("en", "Default", locales); got != "English" {
		t.Errorf("requested en = %q, want English", got)
	}
	// Unlisted locale falls back to the stored default-language value.
	if got := Resolve("kk", "Default", locales); got != "Default" {
		t.Errorf("requested kk = %q, want Default", got)
	}
	if got := Resolve("ru", "Default", nil); got != "Default" {
		t.Errorf("nil locale map = %q, want Default", got)
	}
	if got := Resolve("en", "Default", LocaleMap{"en": ""}); got != "Default" {
		t.Errorf("empty override = %q, want Default", got)
	}
}

func TestResolver_Negotiate(t *testing.T) {
	r := NewResolver("ru", []string{"ru", "kk", "en"})

	tests := []struct {
		header string
		want   string
	}{
		{"", "ru"},
		{"en", "en"},
		{"en-US,en;q=0.9", "en"},
		{"kk-KZ", "kk"},
		{"de, fr", "ru"},
		{"*", "ru"},
		{"de;q=0.9, kk;q=0.8", "kk"},
	}
	for _, tt := range tests {
		if got := r.Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestResolver_ValidateInput(t *testing.T) {
	r := NewResolver("ru", []string{"kk", "en"})
	if err := r.ValidateInput("en"); err != nil {
		t.Errorf("en should be supported: %v", err)
	}
	if err := r.ValidateInput("fr"); err == nil {
		t.Error("fr should be rejected")
	}
}

func TestResolver_ValidateDefault(t *testing.T) {
	r := NewResolver("ru", []string{"kk", "en"})
	if err := r.ValidateDefault("ru"); err != nil {
		t.Errorf("default lang should pass: %v", err)
	}
	if err := r.ValidateDefault(""); err != nil {
		t.Errorf("empty lang should pass: %v", err)
	}
	if err := r.ValidateDefault("en"); err == nil {
		t.Error("non-default lang should be rejected")
	}
}
