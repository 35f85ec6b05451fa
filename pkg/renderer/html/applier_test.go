package html

import (
	"errors"
	"strings"
	"testing"

	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

func TestHTMLApplier_TextNodes(t *testing.T) {
	tests := []struct {
		name     string
		node     *vdom.VNode
		expected string
	}{
		{
			name:     "simple text",
			node:     vdom.NewText("Hello World"),
			expected: "Hello World",
		},
		{
			name:     "text with HTML entities",
			node:     vdom.NewText("<script>alert('xss')</script>"),
			expected: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name:     "text with quotes",
			node:     vdom.NewText(`"Hello" & 'World'`),
			expected: "&#34;Hello&#34; &amp; &#39;World&#39;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("RenderToString() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestHTMLApplier_Elements(t *testing.T) {
	tests := []struct {
		name     string
		node     *vdom.VNode
		expected string
	}{
		{
			name:     "empty div",
			node:     vdom.NewElement("div", nil),
			expected: "<div></div>",
		},
		{
			name:     "div with text",
			node:     vdom.NewElement("div", nil, vdom.NewText("Hello")),
			expected: "<div>Hello</div>",
		},
		{
			name: "attributes in name order",
			node: vdom.NewElement("div", vdom.Props{
				"id":    "main",
				"class": "container",
				"key":   "skipped",
			}),
			expected: `<div class="container" id="main"></div>`,
		},
		{
			name: "nested elements",
			node: vdom.NewElement("div", nil,
				vdom.NewElement("p", nil, vdom.NewText("Paragraph 1")),
				vdom.NewElement("p", nil, vdom.NewText("Paragraph 2")),
			),
			expected: "<div><p>Paragraph 1</p><p>Paragraph 2</p></div>",
		},
		{
			name: "void element",
			node: vdom.NewElement("img", vdom.Props{
				"src": "image.jpg",
				"alt": "Test Image",
			}),
			expected: `<img alt="Test Image" src="image.jpg">`,
		},
		{
			name: "boolean attributes",
			node: vdom.NewElement("input", vdom.Props{
				"type":     "checkbox",
				"checked":  true,
				"disabled": false,
			}),
			expected: `<input checked type="checkbox">`,
		},
		{
			name: "numeric attributes",
			node: vdom.NewElement("svg", vdom.Props{
				"width":   8000.0,
				"height":  8000,
				"viewBox": "0 0 8000 8000",
			}),
			expected: `<svg height="8000" viewBox="0 0 8000 8000" width="8000"></svg>`,
		},
		{
			name: "raw style content",
			node: vdom.NewElement("style", nil, vdom.NewText(".a > .b { color: red; }")),
			expected: "<style>.a > .b { color: red; }</style>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("RenderToString() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestHTMLApplier_Fragments(t *testing.T) {
	node := vdom.NewFragment(
		vdom.NewElement("h1", nil, vdom.NewText("Title")),
		vdom.NewElement("p", nil, vdom.NewText("Content")),
	)

	expected := "<h1>Title</h1><p>Content</p>"
	result, err := RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result != expected {
		t.Errorf("RenderToString() = %q, want %q", result, expected)
	}
}

func TestHTMLApplier_XSSPrevention(t *testing.T) {
	tests := []struct {
		name    string
		node    *vdom.VNode
		notWant string // should NOT contain this
	}{
		{
			name: "script in text",
			node: vdom.NewElement("div", nil,
				vdom.NewText("<script>alert('xss')</script>"),
			),
			notWant: "<script>",
		},
		{
			name: "script in attribute",
			node: vdom.NewElement("div", vdom.Props{
				"title": `<script>alert('xss')</script>`,
			}),
			notWant: "<script>",
		},
		{
			name: "javascript URL",
			node: vdom.NewElement("a", vdom.Props{
				"href": " JavaScript:alert('xss')",
			}, vdom.NewText("Link")),
			notWant: "alert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if strings.Contains(result, tt.notWant) {
				t.Errorf("Result should not contain %q, got: %q", tt.notWant, result)
			}
		})
	}
}

func TestHTMLApplier_Deterministic(t *testing.T) {
	node := vdom.NewElement("button", vdom.Props{
		"class":           "knowledge-node",
		"data-topic":      "go",
		"style":           "left: 10px; top: 20px",
		"type":            "button",
		"aria-haspopup":   "dialog",
		"data-idle-delay": "0.3",
	}, vdom.NewText("Go"))

	first, err := RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, _ := RenderToString(node)
		if again != first {
			t.Fatalf("render %d differs:\n%s\n%s", i, again, first)
		}
	}
}

func TestHTMLApplier_RejectsIncremental(t *testing.T) {
	a := NewHTMLApplier(&strings.Builder{})
	if err := a.Apply(vdom.NewText("a"), vdom.NewText("b")); err == nil {
		t.Error("expected error for incremental apply")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestHTMLApplier_WriteError(t *testing.T) {
	a := NewHTMLApplier(failingWriter{})
	err := a.Apply(nil, vdom.NewElement("div", nil, vdom.NewText("x")))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("Apply() error = %v, want disk full", err)
	}
}

func TestHTMLApplier_ComplexTree(t *testing.T) {
	node := vdom.NewElement("html", nil,
		vdom.NewElement("head", nil,
			vdom.NewElement("title", nil, vdom.NewText("Knowledge Map")),
			vdom.NewElement("meta", vdom.Props{
				"charset": "utf-8",
			}),
		),
		vdom.NewElement("body", nil,
			vdom.NewElement("header", nil,
				vdom.NewElement("h1", nil, vdom.NewText("Welcome")),
			),
			vdom.NewElement("main", nil,
				vdom.NewElement("p", nil,
					vdom.NewText("This is "),
					vdom.NewElement("strong", nil, vdom.NewText("important")),
					vdom.NewText(" content."),
				),
			),
		),
	)

	result, err := RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedContains := []string{
		"<html>",
		"</html>",
		"<title>Knowledge Map</title>",
		`<meta charset="utf-8">`,
		"<h1>Welcome</h1>",
		"<strong>important</strong>",
	}

	for _, expected := range expectedContains {
		if !strings.Contains(result, expected) {
			t.Errorf("Result should contain %q, got: %q", expected, result)
		}
	}
}
