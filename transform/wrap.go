// Package transform holds the post-inlining tree edits: content wrapping by
// class, heading case normalization and class attribute stripping. All of
// them mutate the borrowed tree in place and run strictly after the style
// engine - class stripping must stay last so class-based selection and
// wrapping keep working.
package transform

import (
	"golang.org/x/net/html"

	"smover/document"
)

// WrapPreByClass relocates the entire content of every element carrying the
// given class token into a newly created <pre> child, which replaces the
// original content in place. Matched elements are independent subtrees, so
// processing order does not matter. Returns the number of elements wrapped.
func WrapPreByClass(root *html.Node, class string) int {
	if class == "" {
		return 0
	}

	var targets []*html.Node
	document.Walk(root, func(n *html.Node) {
		if document.HasClass(n, class) {
			targets = append(targets, n)
		}
	})

	for _, n := range targets {
		pre := document.NewElement("pre")
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
			pre.AppendChild(c)
		}
		n.AppendChild(pre)
	}
	return len(targets)
}
