package transform

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"smover/document"
)

func parseTree(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("unable to parse test markup: %v", err)
	}
	return root
}

func render(t *testing.T, root *html.Node) string {
	t.Helper()
	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		t.Fatalf("unable to render tree: %v", err)
	}
	return sb.String()
}

func TestWrapPreByClass(t *testing.T) {
	root := parseTree(t, `<html><body><div class="code-block">x<span>y</span></div><div>plain</div></body></html>`)

	if got := WrapPreByClass(root, "code-block"); got != 1 {
		t.Fatalf("WrapPreByClass() = %d, want 1", got)
	}

	out := render(t, root)
	if !strings.Contains(out, `<div class="code-block"><pre>x<span>y</span></pre></div>`) {
		t.Errorf("marked element content not wrapped:\n%s", out)
	}
	if !strings.Contains(out, "<div>plain</div>") {
		t.Errorf("unmarked element must stay untouched:\n%s", out)
	}
}

func TestWrapPreByClass_TokenMatch(t *testing.T) {
	root := parseTree(t, `<html><body><div class="intro code-block outro">x</div><div class="code-blocked">y</div></body></html>`)

	if got := WrapPreByClass(root, "code-block"); got != 1 {
		t.Fatalf("WrapPreByClass() = %d, want 1 (class must match as a whole token)", got)
	}
}

func TestWrapPreByClass_NoTargets(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)

	if got := WrapPreByClass(root, "code-block"); got != 0 {
		t.Errorf("WrapPreByClass() = %d, want 0", got)
	}
}

func TestNormalizeHeadingCase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mixed case", "the QUICK brown fox", "The QUICK brown fox"},
		{"acronyms kept", "using NASA and HTTP", "Using NASA and HTTP"},
		{"inner capitals kept", "about openSSL internals", "About openSSL internals"},
		{"all caps tail", "HELLO WORLD", "Hello WORLD"},
		{"whitespace collapsed", "  spaced   out  ", "Spaced out"},
		{"single word", "INTRODUCTION", "Introduction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseTree(t, "<html><body><h1>"+tt.in+"</h1></body></html>")

			if got := NormalizeHeadingCase(root); got != 1 {
				t.Fatalf("NormalizeHeadingCase() = %d, want 1", got)
			}

			h1 := findTag(root, "h1")
			if got := document.Text(h1); got != tt.want {
				t.Errorf("heading = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeHeadingCase_SkipsNestedMarkup(t *testing.T) {
	root := parseTree(t, `<html><body><h1>plain <em>EMPHASIS</em></h1></body></html>`)

	if got := NormalizeHeadingCase(root); got != 0 {
		t.Errorf("NormalizeHeadingCase() = %d, want 0 (nested markup must stay untouched)", got)
	}
}

func TestNormalizeHeadingCase_SkipsH6(t *testing.T) {
	root := parseTree(t, `<html><body><h6>LEAVE ME</h6></body></html>`)

	NormalizeHeadingCase(root)

	if got := document.Text(findTag(root, "h6")); got != "LEAVE ME" {
		t.Errorf("h6 = %q, want untouched", got)
	}
}

func TestStripClassAttributes(t *testing.T) {
	root := parseTree(t, `<html><body><div class="a"><p class="b c">x</p></div><span>y</span></body></html>`)

	if got := StripClassAttributes(root); got != 2 {
		t.Fatalf("StripClassAttributes() = %d, want 2", got)
	}
	if strings.Contains(render(t, root), "class=") {
		t.Errorf("class attributes survived:\n%s", render(t, root))
	}
}

func findTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	document.Walk(root, func(n *html.Node) {
		if found == nil && n.Data == tag {
			found = n
		}
	})
	return found
}
