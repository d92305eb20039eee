package internal

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hund", "Hund"},
		{"Käse", "Käse"},
		{"Straße", "Straße"},
		{"a/b:c", "a_b_c"},
		{"  Katze  ", "Katze"},
		{"Kinder garten", "Kinder_garten"},
		{"", "word"},
		{"ябълка", "ябълка"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "grunwald/") {
		t.Errorf("unexpected user agent %q", ua)
	}
	if !strings.HasSuffix(ua, Version) {
		t.Errorf("user agent %q does not carry version %q", ua, Version)
	}
}
