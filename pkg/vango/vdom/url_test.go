package vdom

import "testing"

func TestSafeURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://example.com/a?b=c", "https://example.com/a?b=c"},
		{"/docs/topic", "/docs/topic"},
		{"#section", "#section"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"javascript:alert(1)", "#"},
		{" JavaScript:alert(1)", "#"},
		{"java\tscript:alert(1)", "#"},
		{"\x00javascript\n:alert(1)", "#"},
		{"vbscript:msgbox", "#"},
		{"data:text/html,<script>alert(1)</script>", "#"},
		{"./javascript:notascheme", "./javascript:notascheme"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SafeURL(tt.href); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
