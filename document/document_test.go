package document

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

const sample = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title> My Book </title>
<style>p { color: red; }</style>
</head>
<body>
<p class="first intro">hello</p>
</body>
</html>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample), "book.html", nil, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.SrcName() != "book.html" {
		t.Errorf("SrcName() = %q, want %q", doc.SrcName(), "book.html")
	}
	if doc.Charset() != "utf-8" {
		t.Errorf("Charset() = %q, want %q", doc.Charset(), "utf-8")
	}
	if doc.Title() != "My Book" {
		t.Errorf("Title() = %q, want %q", doc.Title(), "My Book")
	}
}

func TestParse_ForcedEncoding(t *testing.T) {
	// 0xE9 is é in latin-1; content sniffing is bypassed entirely
	data := []byte("<html><body><p>caf\xe9</p></body></html>")

	doc, err := Parse(data, "cafe.html", charmap.ISO8859_1, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !strings.Contains(doc.String(), "café") {
		t.Errorf("expected forced decoding to produce café, got:\n%s", doc.String())
	}
}

func TestFindStyleAndDetach(t *testing.T) {
	doc, err := Parse([]byte(sample), "book.html", nil, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	node := doc.FindStyle()
	if node == nil {
		t.Fatal("FindStyle() = nil, want style node")
	}
	if got := Text(node); got != "p { color: red; }" {
		t.Errorf("style text = %q", got)
	}

	Detach(node)
	if strings.Contains(doc.String(), "<style") {
		t.Errorf("style node survived detach:\n%s", doc.String())
	}

	// already detached - must be a no-op
	Detach(node)
	Detach(nil)
}

func TestFindStyle_Absent(t *testing.T) {
	doc, err := Parse([]byte(`<html><body><p>x</p></body></html>`), "plain.html", nil, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.FindStyle() != nil {
		t.Error("FindStyle() found a node in a document without styles")
	}
}

func TestAttrHelpers(t *testing.T) {
	n := NewElement("p")

	if _, ok := GetAttr(n, "style"); ok {
		t.Error("GetAttr() on fresh element reported a value")
	}

	SetAttr(n, "style", "color:red")
	if v, ok := GetAttr(n, "style"); !ok || v != "color:red" {
		t.Errorf("GetAttr() = %q (%v), want %q", v, ok, "color:red")
	}

	SetAttr(n, "style", "color:blue")
	if v, _ := GetAttr(n, "style"); v != "color:blue" {
		t.Errorf("GetAttr() after overwrite = %q, want %q", v, "color:blue")
	}
	if len(n.Attr) != 1 {
		t.Errorf("overwrite added attribute, count = %d", len(n.Attr))
	}

	if !RemoveAttr(n, "style") {
		t.Error("RemoveAttr() = false for present attribute")
	}
	if RemoveAttr(n, "style") {
		t.Error("RemoveAttr() = true for absent attribute")
	}
}

func TestHasClass(t *testing.T) {
	doc, err := Parse([]byte(sample), "book.html", nil, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var p *html.Node
	Walk(doc.Root(), func(n *html.Node) {
		if n.Data == "p" {
			p = n
		}
	})
	if p == nil {
		t.Fatal("p element not found")
	}

	if !HasClass(p, "first") || !HasClass(p, "intro") {
		t.Errorf("HasClass() missed declared tokens: %v", p.Attr)
	}
	if HasClass(p, "firs") || HasClass(p, "first intro") {
		t.Error("HasClass() must match whole tokens only")
	}
}

func TestWalk_VisitsElementsInDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(`<html><body><div><p>x</p></div><span>y</span></body></html>`), "t.html", nil, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var tags []string
	Walk(doc.Root(), func(n *html.Node) {
		tags = append(tags, n.Data)
	})

	want := "html head body div p span"
	if got := strings.Join(tags, " "); got != want {
		t.Errorf("Walk order = %q, want %q", got, want)
	}
}

func TestNewElement(t *testing.T) {
	pre := NewElement("pre")
	if pre.Type != html.ElementNode || pre.Data != "pre" {
		t.Errorf("NewElement() = %+v", pre)
	}
	if pre.DataAtom.String() != "pre" {
		t.Errorf("DataAtom = %v, want pre", pre.DataAtom)
	}
}
