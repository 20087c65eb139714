// Package document wraps the parsed HTML element tree. It owns loading with
// charset detection, locating and removing the style-definition node and
// serialization back to markup. The style engine borrows the tree through
// this package for the duration of a run.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Document encapsulates the parsed element tree of a single HTML source.
type Document struct {
	root    *html.Node
	src     string
	charset string
	log     *zap.Logger
}

// Parse builds a Document from raw markup bytes. When force is nil the input
// encoding is detected from BOM, meta tags and content sniffing; otherwise
// the forced encoding is used regardless of what the document claims.
func Parse(data []byte, src string, force encoding.Encoding, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("document")

	enc, name := force, ""
	if enc != nil {
		if n, err := htmlindex.Name(enc); err == nil {
			name = n
		}
		log.Debug("Forcing input encoding", zap.String("source", src), zap.String("charset", name))
	} else {
		var certain bool
		enc, name, certain = charset.DetermineEncoding(data, "")
		log.Debug("Detected input encoding", zap.String("source", src), zap.String("charset", name), zap.Bool("certain", certain))
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode input from %q: %w", name, err)
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("unable to parse markup: %w", err)
	}

	return &Document{root: root, src: src, charset: name, log: log}, nil
}

// Root returns the root of the element tree.
func (d *Document) Root() *html.Node {
	return d.root
}

// SrcName returns the source identifier the document was parsed from.
func (d *Document) SrcName() string {
	return d.src
}

// Charset returns the name of the encoding the input was read with.
func (d *Document) Charset() string {
	return d.charset
}

// Title returns text of the first <title> element, if any.
func (d *Document) Title() string {
	if n := findElement(d.root, "title"); n != nil {
		return strings.TrimSpace(Text(n))
	}
	return ""
}

// FindStyle returns the first style-definition node of the document in
// depth-first order, or nil when the document carries none.
func (d *Document) FindStyle() *html.Node {
	return findElement(d.root, "style")
}

// WriteTo serializes the tree as markup text.
func (d *Document) WriteTo(w io.Writer) error {
	return html.Render(w, d.root)
}

// String returns the serialized markup (used by tests and debug reporting).
func (d *Document) String() string {
	var sb strings.Builder
	if err := d.WriteTo(&sb); err != nil {
		d.log.Warn("Unable to serialize document", zap.Error(err))
		return ""
	}
	return sb.String()
}

// Detach removes a node from its parent. Detaching an already detached node
// is a no-op.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// NewElement creates an unattached element node with the given tag name.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// Text returns the concatenated text content of a node's direct text
// children. Nested markup is not descended into.
func Text(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// GetAttr returns the value of a named attribute.
func GetAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets a named attribute, replacing an existing value.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes a named attribute. It reports whether the attribute was
// present.
func RemoveAttr(n *html.Node, name string) bool {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// HasClass reports whether an element carries the given class token in its
// whitespace-separated class attribute.
func HasClass(n *html.Node, class string) bool {
	val, ok := GetAttr(n, "class")
	if !ok {
		return false
	}
	for token := range strings.FieldsSeq(val) {
		if token == class {
			return true
		}
	}
	return false
}

// Walk visits every element node under root (root included when it is an
// element) in depth-first document order.
func Walk(root *html.Node, visit func(n *html.Node)) {
	if root == nil {
		return
	}
	if root.Type == html.ElementNode {
		visit(root)
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

func findElement(root *html.Node, tag string) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode && root.Data == tag && root.Namespace == "" {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findElement(c, tag); n != nil {
			return n
		}
	}
	return nil
}
