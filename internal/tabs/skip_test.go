package tabs

import "testing"

func TestSkipReason(t *testing.T) {
	skip := []string{"slack.com", "localhost", "bücher.example"}

	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/a", ""},
		{"https://slack.com", "Skipped domain: slack.com"},
		{"https://app.slack.com/client/T1", "Skipped domain: slack.com"},
		{"https://notslack.com", ""},
		{"https://slack.com.evil.io", ""},
		{"http://localhost:3000/dev", "Skipped domain: localhost"},
		{"https://xn--bcher-kva.example/buch", "Skipped domain: bücher.example"},
		{"https://shop.BÜCHER.example/", "Skipped domain: bücher.example"},
		{"chrome://newtab", "Internal page (chrome://)"},
		{"chrome-extension://abc/popup.html", "Internal page (chrome-extension://)"},
		{"moz-extension://abc", "Internal page (moz-extension://)"},
		{"file:///tmp/notes.txt", "Internal page (file://)"},
		{"devtools://devtools/bundled", "Internal page (devtools://)"},
		{"", "Invalid URL"},
		{"example.com/no-scheme", "Invalid URL"},
		{"mailto:someone@example.com", "Invalid URL"},
	}
	for _, tt := range tests {
		if got := skipReason(tt.url, skip); got != tt.want {
			t.Errorf("skipReason(%q): expected %q, got %q", tt.url, tt.want, got)
		}
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := map[string]string{
		"Example.COM":           "example.com",
		"example.com.":          "example.com",
		"bücher.example":        "xn--bcher-kva.example",
		"xn--bcher-kva.example": "xn--bcher-kva.example",
	}
	for in, want := range tests {
		if got := normalizeHost(in); got != want {
			t.Errorf("normalizeHost(%q): expected %q, got %q", in, want, got)
		}
	}
}
