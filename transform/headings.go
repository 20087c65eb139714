package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"smover/document"
)

var headingTags = map[string]bool{
	"h1": true,
	"h2": true,
	"h3": true,
	"h4": true,
	"h5": true,
}

// NormalizeHeadingCase rewrites the text of every h1-h5 element whose content
// is a single run of plain text. Headings with nested markup are left alone.
// Returns the number of headings rewritten.
func NormalizeHeadingCase(root *html.Node) int {
	count := 0
	document.Walk(root, func(n *html.Node) {
		if !headingTags[n.Data] {
			return
		}
		text := n.FirstChild
		if text == nil || text.NextSibling != nil || text.Type != html.TextNode {
			return
		}
		text.Data = adjustCase(text.Data)
		count++
	})
	return count
}

// adjustCase lowercases heading words while keeping the first word
// capitalized, preserving fully upper-case words (acronyms) and words with an
// upper-case letter past the first (proper nouns, camel case). Words are
// split and rejoined on single spaces.
func adjustCase(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	adjusted := make([]string, 0, len(words))
	for i, word := range words {
		switch {
		case i == 0:
			adjusted = append(adjusted, capitalize(word))
		case isUpperWord(word):
			adjusted = append(adjusted, word)
		case hasUpperPastFirst(word):
			adjusted = append(adjusted, word)
		default:
			adjusted = append(adjusted, strings.ToLower(word))
		}
	}
	return strings.Join(adjusted, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError && size <= 1 {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// isUpperWord reports whether a word contains at least one cased rune and no
// lower-case ones.
func isUpperWord(word string) bool {
	cased := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// hasUpperPastFirst reports whether any rune after the first is upper-case.
func hasUpperPastFirst(word string) bool {
	first := true
	for _, r := range word {
		if first {
			first = false
			continue
		}
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
