package unminify

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// formatCSS prints one selector and one declaration per line, nested blocks indented by two
// spaces, with at least one blank line between top-level rules. Blank lines in the input survive
// up to maxPreservedBlankLines. Malformed declarations are skipped the way browsers skip them.
func formatCSS(code string) (string, error) {
	p := css.NewParser(parse.NewInputString(code), false)
	w := &cssWriter{}

	for {
		from := p.Offset()
		gt, _, data := p.Next()
		blank := blankLinesAt(code, from)
		if gt != css.TokenGrammar {
			w.flushRaw()
		}

		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				continue
			}
			if err := p.Err(); err != nil && err != io.EOF {
				return "", fmt.Errorf("invalid CSS: %w", err)
			}
			return w.String(), nil
		case css.CommentGrammar:
			w.startItem(blank)
			w.line(string(data))
		case css.AtRuleGrammar:
			w.startItem(blank)
			w.line(joinWords(string(data), cssValues(p.Values())) + ";")
		case css.BeginAtRuleGrammar:
			w.startItem(blank)
			w.line(joinWords(string(data), cssValues(p.Values())) + " {")
			w.open()
		case css.BeginRulesetGrammar:
			w.startItem(blank)
			selectors := splitSelectors(p.Values())
			for i, sel := range selectors {
				if i < len(selectors)-1 {
					w.line(sel + ",")
				} else {
					w.line(sel + " {")
				}
			}
			w.open()
		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			if w.depth > 0 {
				w.depth--
			}
			w.opened = false
			w.line("}")
			w.closed = w.depth == 0
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			w.startItem(blank)
			w.line(string(data) + ": " + cssValues(p.Values()) + ";")
		case css.TokenGrammar:
			w.raw.Write(data)
		}
	}
}

type cssWriter struct {
	b      strings.Builder
	raw    strings.Builder // tokens of an at-rule body the parser does not understand
	depth  int
	opened bool // nothing printed yet inside the current block
	closed bool
}

func (w *cssWriter) open() {
	w.depth++
	w.opened = true
}

// startItem writes the blank lines owed before the next item. A top-level item that follows a
// closed block always gets one; the first item inside a block gets none.
func (w *cssWriter) startItem(blank int) {
	if w.depth == 0 && w.closed && blank < 1 {
		blank = 1
	}
	if w.opened || w.b.Len() == 0 {
		blank = 0
	}
	w.opened, w.closed = false, false
	w.b.WriteString(strings.Repeat("\n", blank))
}

// blankLinesAt counts the blank lines in the whitespace run starting at code[from:], capped at
// maxPreservedBlankLines.
func blankLinesAt(code string, from int) int {
	newlines := 0
scan:
	for i := from; i < len(code); i++ {
		switch code[i] {
		case '\n':
			newlines++
		case ' ', '\t', '\r', '\f':
		default:
			break scan
		}
	}
	return min(max(newlines-1, 0), maxPreservedBlankLines)
}

func (w *cssWriter) line(s string) {
	w.b.WriteString(strings.Repeat("  ", w.depth))
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *cssWriter) flushRaw() {
	if text := strings.TrimSpace(w.raw.String()); text != "" {
		w.line(text)
	}
	w.raw.Reset()
}

func (w *cssWriter) String() string {
	return w.b.String()
}

// splitSelectors breaks a selector list at top-level commas.
func splitSelectors(tokens []css.Token) []string {
	var groups []string
	level, start := 0, 0
	for i, t := range tokens {
		switch t.TokenType {
		case css.LeftParenthesisToken, css.LeftBracketToken, css.FunctionToken:
			level++
		case css.RightParenthesisToken, css.RightBracketToken:
			level--
		case css.CommaToken:
			if level == 0 {
				groups = append(groups, cssValues(tokens[start:i]))
				start = i + 1
			}
		}
	}
	return append(groups, cssValues(tokens[start:]))
}

// cssValues renders a token list with each whitespace run reduced to a single space and a
// space after every comma.
func cssValues(tokens []css.Token) string {
	var b strings.Builder
	space := func() {
		if s := b.String(); s != "" && s[len(s)-1] != ' ' {
			b.WriteByte(' ')
		}
	}
	for _, t := range tokens {
		switch {
		case t.TokenType == css.WhitespaceToken:
			space()
		case t.TokenType == css.CommaToken:
			b.WriteString(", ")
		case t.TokenType == css.DelimToken && string(t.Data) == "!":
			space()
			b.WriteByte('!')
		default:
			b.Write(t.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func joinWords(a, b string) string {
	if b == "" {
		return a
	}
	return a + " " + b
}
