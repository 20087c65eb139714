package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules. It never fails -
// malformed input degrades to fewer (or empty) rules and syntax problems from
// the underlying tokenizer stay behind this boundary.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet, keeping only plain style rules in
// source order. At-rules of any kind are skipped whole. A stream-level
// tokenizer error discards only the offending fragment: a warning is recorded
// and parsing restarts right after the error, so rules before and after it
// survive. The optional source parameter identifies what's being parsed
// (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Rules:    make([]Rule, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	for rest := data; ; {
		input := parse.NewInput(bytes.NewReader(rest))
		parser := css.NewParser(input, false)
		p.parseRules(parser, sheet)

		err := parser.Err()
		if err == nil || errors.Is(err, io.EOF) {
			return sheet
		}

		sheet.Warnings = append(sheet.Warnings, "recovering from parse error: "+err.Error())
		p.log.Debug("CSS parse error, resuming after offending fragment", zap.Error(err))

		off := input.Offset()
		if off <= 0 {
			// guarantee forward progress even when nothing was consumed
			off = 1
		}
		if off >= len(rest) {
			return sheet
		}
		rest = rest[off:]
	}
}

// parseRules consumes grammar tokens until the stream ends or errors out.
func (p *Parser) parseRules(parser *css.Parser, sheet *Stylesheet) {
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error - the caller inspects parser.Err()
			return

		case css.BeginAtRuleGrammar:
			atRule := string(data)
			sheet.Warnings = append(sheet.Warnings, "skipping at-rule: "+atRule)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			p.skipAtRuleBlock(parser)

		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g. @import, @charset)
			atRule := string(data)
			sheet.Warnings = append(sheet.Warnings, "skipping at-rule: "+atRule)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.BeginRulesetGrammar:
			selector := selectorText(data, parser.Values())
			decls := p.parseDeclarations(parser)
			sheet.Rules = append(sheet.Rules, Rule{
				Selector:     selector,
				Declarations: decls,
			})
		}
	}
}

// selectorText rebuilds the full selector text of a rule from grammar tokens,
// collapsing runs of whitespace. Grouped selectors keep their commas - the
// whole group is matched as one unit later.
func selectorText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		if v.TokenType == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.Write(v.Data)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// parseDeclarations consumes property declarations until the end of the
// current ruleset. A property declared twice keeps its first position and
// takes the last value.
func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration
	index := make(map[string]int)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			value := declarationValue(parser.Values())
			if name == "" || value == "" {
				continue
			}
			if at, seen := index[name]; seen {
				decls[at].Value = value
				continue
			}
			index[name] = len(decls)
			decls = append(decls, Declaration{Property: name, Value: value})

		case css.CustomPropertyGrammar:
			// CSS custom properties (--var) - skip
			continue
		}
	}
}

// declarationValue converts declaration value tokens into plain text with
// whitespace collapsed. Priority markers are not part of the value.
func declarationValue(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	value := strings.TrimSpace(strings.Join(parts, ""))

	// drop "!important" - override order is decided by rule order alone
	if cut := strings.TrimSuffix(value, "important"); cut != value {
		cut = strings.TrimSpace(cut)
		if trimmed := strings.TrimSuffix(cut, "!"); trimmed != cut {
			value = strings.TrimSpace(trimmed)
		}
	}
	return value
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}
