package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ComponentStyle is a named stylesheet. Class names are global: a sheet
// owns its names by prefix ("knowledge-map__canvas") rather than by hashing.
type ComponentStyle struct {
	// Name identifies the sheet in the registry
	Name string

	// Hash is a short content hash, used for cache busting
	Hash string

	// CSS contains the stylesheet source
	CSS string

	classes map[string]bool
}

// Style creates a new ComponentStyle
func Style(name, css string) *ComponentStyle {
	h := sha256.Sum256([]byte(css))

	classes := make(map[string]bool)
	for _, class := range extractClassNames(css) {
		classes[class] = true
	}

	return &ComponentStyle{
		Name:    name,
		Hash:    hex.EncodeToString(h[:])[:8],
		CSS:     css,
		classes: classes,
	}
}

// Has returns whether the sheet has a rule selecting the class name
func (c *ComponentStyle) Has(name string) bool {
	if c == nil {
		return false
	}
	return c.classes[name]
}

// Classes returns every class name the sheet selects, sorted
func (c *ComponentStyle) Classes() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.classes))
	for class := range c.classes {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// isClassEnd reports whether c terminates a class name in a selector
func isClassEnd(c byte) bool {
	switch c {
	case ' ', '{', ',', ':', '[', '\n', '\r', '\t', '.', '#', '>', '+', '~', '(', ')':
		return true
	}
	return false
}

// extractClassNames extracts single class names from selectors. Compound
// selectors contribute each of their classes.
func extractClassNames(css string) []string {
	css = removeComments(css)

	seen := make(map[string]bool)
	var out []string
	depth := 0
	for i := 0; i < len(css); i++ {
		switch css[i] {
		case '{':
			depth++
			continue
		case '}':
			depth--
			continue
		case '.':
		default:
			continue
		}

		// inside a declaration block a dot is part of a number, except
		// in nested rule blocks such as @media
		if depth > 0 && !inSelector(css, i) {
			continue
		}

		start := i + 1
		end := start
		for end < len(css) && !isClassEnd(css[end]) {
			end++
		}
		if end > start {
			name := css[start:end]
			if !isDigit(name[0]) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		i = end - 1
	}
	return out
}

// inSelector reports whether position i lies before the next '{' without
// crossing a ';' or '}', which marks selector text in a nested block.
func inSelector(css string, i int) bool {
	for j := i; j < len(css); j++ {
		switch css[j] {
		case '{':
			return true
		case ';', '}':
			return false
		}
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// removeComments removes CSS comments from the string
func removeComments(css string) string {
	result := strings.Builder{}
	i := 0
	for i < len(css) {
		if i < len(css)-1 && css[i] == '/' && css[i+1] == '*' {
			// Find end of comment; an unterminated one runs to the end
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 2
		} else {
			result.WriteByte(css[i])
			i++
		}
	}
	return result.String()
}

// Minify strips comments and collapses whitespace
func Minify(css string) string {
	css = removeComments(css)

	var b strings.Builder
	b.Grow(len(css))
	space := false
	for i := 0; i < len(css); i++ {
		c := css[i]
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' {
			space = true
			continue
		}
		if space && b.Len() > 0 && !isTight(c) && !isTight(lastByte(&b)) {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(c)
	}
	return b.String()
}

// isTight reports whether whitespace next to c carries no meaning
func isTight(c byte) bool {
	switch c {
	case '{', '}', ';', ':', ',', '>':
		return true
	}
	return false
}

func lastByte(b *strings.Builder) byte {
	s := b.String()
	return s[len(s)-1]
}
