package vdom

import (
	"strings"
	"unicode"
)

// scriptSchemes are URL schemes that run code when followed
var scriptSchemes = map[string]bool{
	"javascript": true,
	"vbscript":   true,
	"data":       true,
}

// SafeURL returns href, or "#" when it uses a scheme that runs script.
// URL parsers skip whitespace and control characters inside a scheme, so
// they are skipped here too.
func SafeURL(href string) string {
	if scheme, ok := urlScheme(href); ok && scriptSchemes[scheme] {
		return "#"
	}
	return href
}

func urlScheme(href string) (string, bool) {
	var b strings.Builder
	for _, r := range href {
		switch {
		case r == ':':
			return b.String(), true
		case r <= ' ' || r == 0x7f:
		case r == '/' || r == '?' || r == '#':
			return "", false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return "", false
}
