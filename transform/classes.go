package transform

import (
	"golang.org/x/net/html"

	"smover/document"
)

// StripClassAttributes removes the class attribute from every element,
// whether or not it was used for selection or wrapping. This must be the
// last transform of the pipeline. Returns the number of attributes removed.
func StripClassAttributes(root *html.Node) int {
	count := 0
	document.Walk(root, func(n *html.Node) {
		if document.RemoveAttr(n, "class") {
			count++
		}
	})
	return count
}
