package style

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"smover/css"
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

func findTag(root *html.Node, tag string) *html.Node {
	var found *html.Node
	document.Walk(root, func(n *html.Node) {
		if found == nil && n.Data == tag {
			found = n
		}
	})
	return found
}

func sheetOf(rules ...css.Rule) *css.Stylesheet {
	return &css.Stylesheet{Rules: rules}
}

func TestApply_SetsStyleAttribute(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(css.Rule{
		Selector:     "p",
		Declarations: []css.Declaration{{Property: "color", Value: "red"}},
	}))

	p := findTag(root, "p")
	if v, ok := document.GetAttr(p, "style"); !ok || v != "color:red" {
		t.Errorf("style = %q (%v), want %q", v, ok, "color:red")
	}
}

func TestApply_LastRuleWinsKeepsFirstPosition(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(
		css.Rule{Selector: "p", Declarations: []css.Declaration{{Property: "color", Value: "red"}}},
		css.Rule{Selector: "p", Declarations: []css.Declaration{
			{Property: "color", Value: "blue"},
			{Property: "margin", Value: "0"},
		}},
	))

	p := findTag(root, "p")
	if v, _ := document.GetAttr(p, "style"); v != "color:blue;margin:0" {
		t.Errorf("style = %q, want %q", v, "color:blue;margin:0")
	}
}

func TestApply_PreservesExistingInlineStyle(t *testing.T) {
	root := parseTree(t, `<html><body><p style="font-weight: bold">text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(css.Rule{
		Selector:     "p",
		Declarations: []css.Declaration{{Property: "color", Value: "red"}},
	}))

	p := findTag(root, "p")
	if v, _ := document.GetAttr(p, "style"); v != "font-weight:bold;color:red" {
		t.Errorf("style = %q, want existing declarations kept in front", v)
	}
}

func TestApply_CountsBeforeOverride(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(
		css.Rule{Selector: "p", Declarations: []css.Declaration{{Property: "color", Value: "red"}}},
		css.Rule{Selector: "p", Declarations: []css.Declaration{
			{Property: "color", Value: "blue"},
			{Property: "margin", Value: "0"},
		}},
	))

	stats := a.Stats()
	// the overridden red still counts - usage is recorded per offer, not per survivor
	if stats["color"] != 2 {
		t.Errorf("color count = %d, want 2", stats["color"])
	}
	if stats["margin"] != 1 {
		t.Errorf("margin count = %d, want 1", stats["margin"])
	}
}

func TestApply_CountsPerMatchedElement(t *testing.T) {
	root := parseTree(t, `<html><body><p>one</p><p>two</p><p>three</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(css.Rule{
		Selector:     "p",
		Declarations: []css.Declaration{{Property: "color", Value: "red"}},
	}))

	if got := a.Stats()["color"]; got != 3 {
		t.Errorf("color count = %d, want 3", got)
	}
}

func TestApply_InvalidSelectorDiagnosedAndSkipped(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(
		css.Rule{Selector: "p[", Declarations: []css.Declaration{{Property: "color", Value: "red"}}},
		css.Rule{Selector: "p", Declarations: []css.Declaration{{Property: "margin", Value: "0"}}},
	))

	diags := a.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if !strings.HasPrefix(diags[0], "Error selecting elements for selector 'p[': ") {
		t.Errorf("unexpected diagnostic text: %q", diags[0])
	}

	// the rule after the bad one must still apply
	p := findTag(root, "p")
	if v, _ := document.GetAttr(p, "style"); v != "margin:0" {
		t.Errorf("style = %q, want %q", v, "margin:0")
	}
}

func TestApply_NoMatchNoChanges(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(css.Rule{
		Selector:     "blockquote",
		Declarations: []css.Declaration{{Property: "color", Value: "red"}},
	}))

	p := findTag(root, "p")
	if _, ok := document.GetAttr(p, "style"); ok {
		t.Error("unmatched rule must not touch elements")
	}
	if a.Stats().Total() != 0 {
		t.Errorf("stats Total() = %d, want 0", a.Stats().Total())
	}
}

func TestApply_EmptyMergeDropsAttribute(t *testing.T) {
	// malformed attribute plus a rule with no declarations - nothing survives
	// the merge and the attribute goes away entirely
	root := parseTree(t, `<html><body><p style="; garbage ;">text</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(css.Rule{Selector: "p"}))

	p := findTag(root, "p")
	if v, ok := document.GetAttr(p, "style"); ok {
		t.Errorf("expected style attribute removed, got %q", v)
	}
}

func TestApply_SecondPassChangesNothing(t *testing.T) {
	root := parseTree(t, `<html><body><p>text</p></body></html>`)
	sheet := sheetOf(
		css.Rule{Selector: "p", Declarations: []css.Declaration{{Property: "color", Value: "red"}}},
		css.Rule{Selector: "p", Declarations: []css.Declaration{{Property: "margin", Value: "0"}}},
	)

	NewApplier(nil).Apply(root, sheet)
	p := findTag(root, "p")
	first, _ := document.GetAttr(p, "style")

	NewApplier(nil).Apply(root, sheet)
	second, _ := document.GetAttr(p, "style")

	if first != second {
		t.Errorf("second pass changed the attribute: %q -> %q", first, second)
	}
}

func TestApply_GroupedSelectorHitsAllParts(t *testing.T) {
	root := parseTree(t, `<html><body><h1>a</h1><h2>b</h2><p>c</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(css.Rule{
		Selector:     "h1, h2",
		Declarations: []css.Declaration{{Property: "margin", Value: "0"}},
	}))

	for _, tag := range []string{"h1", "h2"} {
		n := findTag(root, tag)
		if v, _ := document.GetAttr(n, "style"); v != "margin:0" {
			t.Errorf("%s style = %q, want %q", tag, v, "margin:0")
		}
	}
	if _, ok := document.GetAttr(findTag(root, "p"), "style"); ok {
		t.Error("p must not be matched by the group")
	}
}

func TestApply_ClassAndDescendantSelectors(t *testing.T) {
	root := parseTree(t, `<html><body><div class="note"><p>in</p></div><p>out</p></body></html>`)

	a := NewApplier(nil)
	a.Apply(root, sheetOf(
		css.Rule{Selector: ".note", Declarations: []css.Declaration{{Property: "border", Value: "1px"}}},
		css.Rule{Selector: "div p", Declarations: []css.Declaration{{Property: "color", Value: "red"}}},
	))

	div := findTag(root, "div")
	if v, _ := document.GetAttr(div, "style"); v != "border:1px" {
		t.Errorf("div style = %q, want %q", v, "border:1px")
	}

	inner := findTag(root, "div").FirstChild
	for inner != nil && inner.Data != "p" {
		inner = inner.NextSibling
	}
	if inner == nil {
		t.Fatal("inner p not found")
	}
	if v, _ := document.GetAttr(inner, "style"); v != "color:red" {
		t.Errorf("inner p style = %q, want %q", v, "color:red")
	}
}
