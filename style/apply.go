package style

import (
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"smover/css"
	"smover/document"
)

// Applier walks a rule list in source order and merges matching rules into
// element style attributes. It owns the usage and diagnostics accumulators
// for one run - construct a fresh Applier per document.
type Applier struct {
	log   *zap.Logger
	stats UsageStats
	diags *Diagnostics
}

// NewApplier creates an Applier with empty accumulators.
func NewApplier(log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Applier{
		log:   log.Named("applier"),
		stats: make(UsageStats),
		diags: &Diagnostics{},
	}
}

// Apply resolves every rule's selector against the borrowed tree and merges
// declarations into the matched elements. Rules are processed strictly in
// source order, so for overlapping properties the last applied rule wins
// while everything else accumulates. A selector the matching primitive
// rejects produces one diagnostic and skips that rule only.
func (a *Applier) Apply(root *html.Node, sheet *css.Stylesheet) {
	for _, rule := range sheet.Rules {
		sel, err := cascadia.Compile(rule.Selector)
		if err != nil {
			a.diags.Appendf("Error selecting elements for selector '%s': %v", rule.Selector, err)
			a.log.Debug("Skipping rule", zap.String("selector", rule.Selector), zap.Error(err))
			continue
		}

		matches := sel.MatchAll(root)
		if len(matches) == 0 {
			continue
		}
		a.log.Debug("Applying rule", zap.String("selector", rule.Selector), zap.Int("elements", len(matches)))

		for _, elem := range matches {
			// usage is counted before merging - an offered property counts
			// even when a later rule overrides its value
			for _, d := range rule.Declarations {
				a.stats.Add(d.Property)
			}
			a.mergeInto(elem, rule.Declarations)
		}
	}
}

// mergeInto folds one rule's declarations into the element's style attribute.
func (a *Applier) mergeInto(elem *html.Node, decls []css.Declaration) {
	attr, _ := document.GetAttr(elem, "style")

	merged := ParseInline(attr)
	merged.Merge(decls)

	if merged.Len() == 0 {
		// nothing to keep, even from before
		document.RemoveAttr(elem, "style")
		return
	}
	document.SetAttr(elem, "style", merged.String())
}

// Stats returns the per-property application counts accumulated so far.
func (a *Applier) Stats() UsageStats {
	return a.stats
}

// Diagnostics returns accumulated diagnostic messages in append order.
func (a *Applier) Diagnostics() []string {
	return a.diags.Entries()
}
