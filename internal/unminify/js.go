package unminify

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// maxPreservedBlankLines caps how many consecutive blank lines from the input survive.
const maxPreservedBlankLines = 2

var (
	// keywords that take a space before a following "(".
	spacedKeywords = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "catch": true, "with": true,
		"return": true, "typeof": true, "void": true, "delete": true, "await": true, "yield": true,
		"in": true, "of": true, "instanceof": true, "case": true, "throw": true, "new": true,
	}

	// keywords after which an operand, not an operator, is expected.
	operandKeywords = map[string]bool{
		"return": true, "typeof": true, "case": true, "do": true, "else": true, "in": true,
		"of": true, "instanceof": true, "new": true, "delete": true, "void": true, "throw": true,
		"yield": true, "await": true,
	}

	// keywords whose parenthesised header is followed by a statement.
	headerKeywords = map[string]bool{"if": true, "for": true, "while": true, "with": true}

	binaryOperators = map[string]bool{
		"=": true, "==": true, "===": true, "!=": true, "!==": true,
		"+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true,
		"<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true, "^=": true,
		"&&=": true, "||=": true, "??=": true,
		"<": true, ">": true, "<=": true, ">=": true, "&&": true, "||": true, "??": true,
		"*": true, "**": true, "/": true, "%": true, "&": true, "|": true, "^": true,
		"<<": true, ">>": true, ">>>": true, "=>": true, "?": true,
	}
)

// formatJS re-indents JavaScript. Statements go on their own lines, blocks and object literals
// are indented by two spaces, operators are spaced, and up to two blank lines from the input are
// kept. The output ends with a newline.
func formatJS(code string) (string, error) {
	l := js.NewLexer(parse.NewInputString(code))
	f := newJSFormatter()

	for {
		tt, data := l.Next()
		switch tt {
		case js.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return "", fmt.Errorf("invalid JavaScript: %w", err)
			}
			return f.finish(), nil
		case js.WhitespaceToken:
			continue
		case js.LineTerminatorToken:
			f.newlines += strings.Count(string(data), "\n")
			if !strings.Contains(string(data), "\n") {
				f.newlines++
			}
			continue
		case js.CommentToken, js.CommentLineTerminatorToken:
			f.comment(string(data))
			continue
		case js.DivToken, js.DivEqToken:
			if f.expectOperand() {
				_, data = l.RegExp()
				f.token(string(data), true)
				continue
			}
		}
		f.token(string(data), isWordToken(string(data)))
	}
}

type jsFrame struct {
	open     byte // '{', '(' or '['
	depth    int  // indent of the lines inside a '{' frame
	object   bool
	isSwitch bool
	isDo     bool
	inCase   bool
	header   bool // '(' of an if, while, for or with header

	ternaries int
}

type jsFormatter struct {
	lines    []string
	cur      strings.Builder
	curDepth int

	frames   []*jsFrame
	prev     string
	prevWord bool
	prevOpen bool // prev was '{' that has not been followed by anything yet
	// prevHeader is set when prev is the ')' closing a statement header, after which a new
	// statement, not an operator, follows.
	prevHeader bool
	unary    bool // prev was a prefix operator

	newlines    int
	breakNext   bool
	closedFrame *jsFrame // set right after a '}'
	ternaries   int      // open "?" outside any bracket
	inCaseLabel bool

	pendingSwitch bool
	pendingDo     bool
}

func newJSFormatter() *jsFormatter {
	return &jsFormatter{}
}

func isWordToken(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '$', c == '\\', c == '#', c == '"', c == '\'', c == '`', c >= 0x80:
		return true
	case c == '.' && len(s) > 1 && s[1] >= '0' && s[1] <= '9':
		return true
	case c == '}' && len(s) > 1:
		// template continuation
		return true
	}
	return false
}

func (f *jsFormatter) top() *jsFrame {
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

// blockDepth is the indent of a new statement line in the innermost brace frame.
func (f *jsFormatter) blockDepth() int {
	for i := len(f.frames) - 1; i >= 0; i-- {
		if fr := f.frames[i]; fr.open == '{' {
			if fr.isSwitch && fr.inCase {
				return fr.depth + 1
			}
			return fr.depth
		}
	}
	return 0
}

// expectOperand reports whether the next token starts an expression, which decides between
// division and a regular expression literal.
func (f *jsFormatter) expectOperand() bool {
	if f.prev == "" {
		return true
	}
	if f.prevWord {
		return operandKeywords[f.prev]
	}
	switch f.prev {
	case ")":
		return f.prevHeader
	case "]", "}", "++", "--":
		return false
	}
	return true
}

func (f *jsFormatter) newLine(depth int) {
	if f.cur.Len() > 0 {
		f.lines = append(f.lines, strings.TrimRight(f.cur.String(), " "))
		f.cur.Reset()
	}
	f.curDepth = depth
}

func (f *jsFormatter) write(s string, space bool) {
	if f.cur.Len() == 0 {
		f.cur.WriteString(strings.Repeat("  ", f.curDepth))
	} else if space {
		f.cur.WriteByte(' ')
	}
	f.cur.WriteString(s)
}

func (f *jsFormatter) blankLines() int {
	n := f.newlines - 1
	if n > maxPreservedBlankLines {
		n = maxPreservedBlankLines
	}
	if n < 0 {
		n = 0
	}
	return n
}

// lineBreak starts a fresh line for s, preserving blank lines seen in the input.
func (f *jsFormatter) lineBreak(s string) {
	depth := f.blockDepth()
	if s == "case" || s == "default" {
		if fr := f.top(); fr != nil && fr.isSwitch {
			depth = fr.depth
		}
	}
	blanks := f.blankLines()
	f.newLine(depth)
	if len(f.lines) > 0 {
		for i := 0; i < blanks; i++ {
			f.lines = append(f.lines, "")
		}
	}
}

// comment keeps a trailing comment on its line; anything else gets a line of its own.
func (f *jsFormatter) comment(s string) {
	lineComment := strings.HasPrefix(s, "//")
	if f.cur.Len() > 0 && f.newlines == 0 {
		f.write(s, true)
		f.breakNext = f.breakNext || lineComment
	} else {
		f.lineBreak("")
		f.write(s, false)
		f.breakNext = lineComment
	}
	f.newlines = 0
	f.prevOpen = false
}

func (f *jsFormatter) token(s string, word bool) {
	closed := f.closedFrame
	f.closedFrame = nil

	// Decide whether s starts a new line.
	switch {
	case f.prevOpen && s == "}":
		// empty block or object stays on one line
	case closed != nil:
		attach := false
		switch s {
		case "else", "catch", "finally":
			attach = !closed.object
		case "while":
			attach = closed.isDo
		case ")", "]", ",", ";", ".", "?.", "(":
			attach = true
		}
		if closed.object && !attach && !f.breakNext && f.newlines == 0 {
			attach = s != "}"
		}
		if !attach {
			f.lineBreak(s)
		}
	case f.breakNext:
		f.lineBreak(s)
	case f.newlines > 0 && f.cur.Len() > 0:
		switch s {
		case ")", "]", ",", ";", ".", "?.":
		default:
			f.lineBreak(s)
		}
	}
	f.breakNext = false
	f.newlines = 0

	switch s {
	case "{":
		f.write(s, f.spaceBefore(s, word))
		fr := &jsFrame{open: '{', depth: f.curDepth + 1, isSwitch: f.pendingSwitch, isDo: f.pendingDo}
		fr.object = !fr.isSwitch && f.opensObject()
		f.pendingSwitch, f.pendingDo = false, false
		f.frames = append(f.frames, fr)
		f.breakNext = true
		f.prevOpen = true
		f.unary = false
		f.setPrev(s, false)
		return
	case "}":
		fr := f.popFrame('{')
		if f.prevOpen {
			f.write(s, false)
			f.breakNext = false
		} else {
			depth := 0
			if fr != nil {
				depth = fr.depth - 1
			}
			if f.cur.Len() > 0 {
				f.newLine(depth)
			}
			f.curDepth = depth
			f.write(s, false)
		}
		f.prevOpen = false
		f.unary = false
		f.closedFrame = fr
		if f.closedFrame == nil {
			f.closedFrame = &jsFrame{open: '{'}
		}
		f.setPrev(s, false)
		return
	}
	f.prevOpen = false

	space := f.spaceBefore(s, word)
	unary := false
	header := false

	switch s {
	case "(":
		f.frames = append(f.frames, &jsFrame{open: '(', header: f.prevWord && headerKeywords[f.prev]})
	case "[":
		f.frames = append(f.frames, &jsFrame{open: '['})
	case ")":
		if fr := f.popFrame('('); fr != nil {
			header = fr.header
		}
	case "]":
		f.popFrame('[')
	case ";":
		if fr := f.top(); fr == nil || fr.open == '{' {
			f.breakNext = true
		}
	case ",":
		if fr := f.top(); fr != nil && fr.open == '{' && fr.object {
			f.breakNext = true
		}
	case "?":
		*f.ternaryCount()++
	case ":":
		switch {
		case *f.ternaryCount() > 0:
			*f.ternaryCount()--
			space = true
		case f.inCaseLabel:
			f.inCaseLabel = false
			if fr := f.top(); fr != nil && fr.isSwitch {
				fr.inCase = true
			}
			f.breakNext = true
			space = false
		default:
			space = false
		}
	case "case", "default":
		if fr := f.top(); fr != nil && fr.isSwitch {
			f.inCaseLabel = true
		}
	case "switch":
		f.pendingSwitch = true
	case "do":
		f.pendingDo = true
	case "!", "~", "...":
		unary = true
	case "+", "-":
		unary = f.expectOperand()
	case "++", "--":
		unary = f.expectOperand()
	}

	f.write(s, space)
	f.unary = unary
	f.setPrev(s, word)
	f.prevHeader = header
}

func (f *jsFormatter) ternaryCount() *int {
	if fr := f.top(); fr != nil {
		return &fr.ternaries
	}
	return &f.ternaries
}

func (f *jsFormatter) setPrev(s string, word bool) {
	f.prev = s
	f.prevWord = word
	f.prevHeader = false
}

func (f *jsFormatter) popFrame(open byte) *jsFrame {
	for i := len(f.frames) - 1; i >= 0; i-- {
		if f.frames[i].open == open {
			fr := f.frames[i]
			f.frames = f.frames[:i]
			return fr
		}
	}
	return nil
}

// opensObject reports whether a '{' in the current position begins an object literal rather
// than a block.
func (f *jsFormatter) opensObject() bool {
	if f.prev == "" {
		return false
	}
	if f.prevWord {
		return f.prev == "return" || f.prev == "yield" || f.prev == "await" || f.prev == "case"
	}
	switch f.prev {
	case ")", "]", "}", ";", "{", "=>":
		return false
	}
	return true
}

func (f *jsFormatter) spaceBefore(s string, word bool) bool {
	if f.cur.Len() == 0 || f.prev == "" {
		return false
	}
	if f.unary {
		return false
	}
	switch f.prev {
	case "(", "[", ".", "?.":
		return false
	}
	if isTemplateOpen(f.prev) {
		return false
	}
	switch s {
	case ")", "]", ",", ";", ".", "?.", ":":
		return false
	case "(":
		if f.prevWord {
			return spacedKeywords[f.prev]
		}
		return f.prev != ")" && f.prev != "]" && f.prev != "}"
	case "[":
		return !f.prevWord && f.prev != ")" && f.prev != "]"
	case "++", "--":
		return !(f.prevWord || f.prev == ")" || f.prev == "]")
	case "{":
		return true
	}
	if word && isTemplateClose(s) {
		return false
	}
	if word && f.prevWord {
		return true
	}
	if binaryOperators[s] || binaryOperators[f.prev] {
		return true
	}
	if s == "+" || s == "-" || f.prev == "+" || f.prev == "-" {
		return true
	}
	switch f.prev {
	case ",", ";", ")", "}", ":":
		return true
	}
	return false
}

func isTemplateOpen(s string) bool {
	return len(s) > 1 && strings.HasSuffix(s, "${")
}

func isTemplateClose(s string) bool {
	return len(s) > 1 && s[0] == '}'
}

func (f *jsFormatter) finish() string {
	f.newLine(0)
	for len(f.lines) > 0 && f.lines[len(f.lines)-1] == "" {
		f.lines = f.lines[:len(f.lines)-1]
	}
	if len(f.lines) == 0 {
		return ""
	}
	return strings.Join(f.lines, "\n") + "\n"
}
