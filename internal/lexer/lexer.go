// Package lexer turns raw stylesheet text into a pull stream of tokens.
// Each call to NextToken advances exactly one token; the lexer owns position
// tracking, including the page counter driven by form feeds. Scanning
// follows CSS tokenizing rules extended with variables ($name) and
// line comments.
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/position"
)

const eof = rune(-1)

// Lexer scans one source document. Broken input is reported through the
// reporter and scanning continues; the stream always ends with an EOF token
// that repeats on further calls.
type Lexer struct {
	input string
	off   int
	pos   position.Position
	rep   *errs.Reporter
}

// New creates a lexer over input. filename is used for positions only.
func New(input, filename string, rep *errs.Reporter) *Lexer {
	return &Lexer{
		input: input,
		pos:   position.New(filename),
		rep:   rep,
	}
}

// NextToken returns the next token in the stream.
func (l *Lexer) NextToken() *ast.Node {
	for {
		start := l.pos
		r := l.peek()
		switch {
		case r == eof:
			return ast.New(ast.KindEOF, start)

		case isWhitespace(r):
			for isWhitespace(l.peek()) {
				l.advance()
			}
			return ast.New(ast.KindWhitespace, start)

		case r == '/':
			if l.peekAt(1) == '*' || l.peekAt(1) == '/' {
				return l.scanComment(start)
			}
			l.advance()
			return ast.New(ast.KindDivide, start)

		case r == '"' || r == '\'':
			return l.scanString(start)

		case isDigit(r):
			return l.scanNumber(start)

		case r == '.':
			if isDigit(l.peekAt(1)) {
				return l.scanNumber(start)
			}
			l.advance()
			return ast.New(ast.KindPeriod, start)

		case r == '+':
			if startsNumberAfterSign(l.peekAt(1), l.peekAt(2)) {
				return l.scanNumber(start)
			}
			l.advance()
			return ast.New(ast.KindPlus, start)

		case r == '-':
			if l.peekAt(1) == '-' && l.peekAt(2) == '>' {
				l.advanceN(3)
				return ast.New(ast.KindCDC, start)
			}
			if startsNumberAfterSign(l.peekAt(1), l.peekAt(2)) {
				return l.scanNumber(start)
			}
			if isIdentStart(l.peekAt(1)) || l.peekAt(1) == '-' {
				return l.scanIdentLike(start)
			}
			l.advance()
			return ast.New(ast.KindSubtract, start)

		case isIdentStart(r) || r == '\\':
			return l.scanIdentLike(start)

		case r == '@':
			l.advance()
			if !isIdentStart(l.peek()) && l.peek() != '-' {
				l.rep.Error(start, "character '@' must introduce an at-keyword")
				continue
			}
			at := ast.New(ast.KindAtKeyword, start)
			at.Value = l.consumeIdentSequence()
			return at

		case r == '#':
			l.advance()
			if !isIdentChar(l.peek()) && l.peek() != '\\' {
				l.rep.Error(start, "'#' by itself is not a valid token")
				continue
			}
			h := ast.New(ast.KindHash, start)
			h.Value = l.consumeIdentSequence()
			return h

		case r == '$':
			if l.peekAt(1) == '=' {
				l.advanceN(2)
				return ast.New(ast.KindSuffixMatch, start)
			}
			l.advance()
			if !isIdentStart(l.peek()) {
				l.rep.Error(start, "character '$' must start a variable name")
				continue
			}
			v := ast.New(ast.KindVariable, start)
			v.Value = l.consumeIdentSequence()
			return v

		case r == '<':
			if l.peekAt(1) == '!' && l.peekAt(2) == '-' && l.peekAt(3) == '-' {
				l.advanceN(4)
				return ast.New(ast.KindCDO, start)
			}
			l.advance()
			return ast.New(ast.KindLessThan, start)

		case r == '~':
			if l.peekAt(1) == '=' {
				l.advanceN(2)
				return ast.New(ast.KindIncludes, start)
			}
			l.advance()
			return ast.New(ast.KindPrecede, start)

		case r == '|':
			if l.peekAt(1) == '=' {
				l.advanceN(2)
				return ast.New(ast.KindDashMatch, start)
			}
			l.advance()
			l.rep.Error(start, "unexpected character '|'")
			continue

		case r == '^':
			if l.peekAt(1) == '=' {
				l.advanceN(2)
				return ast.New(ast.KindPrefixMatch, start)
			}
			l.advance()
			l.rep.Error(start, "unexpected character '^'")
			continue

		case r == '*':
			if l.peekAt(1) == '=' {
				l.advanceN(2)
				return ast.New(ast.KindSubstringMatch, start)
			}
			l.advance()
			return ast.New(ast.KindMultiply, start)

		case r == '=':
			l.advance()
			// treat == like = so conditional expressions accept both
			if l.peek() == '=' {
				l.advance()
			}
			return ast.New(ast.KindEqual, start)

		default:
			if kind, ok := punctuation[r]; ok {
				l.advance()
				return ast.New(kind, start)
			}
			l.advance()
			l.rep.Error(start, "unexpected character %q", string(r))
			continue
		}
	}
}

var punctuation = map[rune]ast.Kind{
	'{': ast.KindOpenCurly,
	'}': ast.KindCloseCurly,
	'[': ast.KindOpenSquare,
	']': ast.KindCloseSquare,
	'(': ast.KindOpenParen,
	')': ast.KindCloseParen,
	':': ast.KindColon,
	';': ast.KindSemicolon,
	',': ast.KindComma,
	'!': ast.KindExclamation,
	'>': ast.KindGreaterThan,
	'&': ast.KindReference,
}

// peek returns the next rune without consuming it.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n runes ahead without consuming anything.
func (l *Lexer) peekAt(n int) rune {
	off := l.off
	for {
		if off >= len(l.input) {
			return eof
		}
		r, size := utf8.DecodeRuneInString(l.input[off:])
		if n == 0 {
			return r
		}
		off += size
		n--
	}
}

// advance consumes one rune, keeping the position current. Carriage returns
// fold into the following newline so \r\n counts as one line break.
func (l *Lexer) advance() rune {
	if l.off >= len(l.input) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(l.input[l.off:])
	l.off += size
	switch r {
	case '\n':
		l.pos.NextLine()
	case '\r':
		if l.off < len(l.input) && l.input[l.off] == '\n' {
			l.off++
		}
		l.pos.NextLine()
		return '\n'
	case '\f':
		l.pos.NextPage()
	}
	return r
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) scanComment(start position.Position) *ast.Node {
	l.advance() // '/'
	opener := l.advance()

	var text strings.Builder
	if opener == '/' {
		for l.peek() != eof && l.peek() != '\n' && l.peek() != '\f' && l.peek() != '\r' {
			text.WriteRune(l.advance())
		}
	} else {
		for {
			r := l.peek()
			if r == eof {
				l.rep.Error(start, "unterminated comment")
				break
			}
			if r == '*' && l.peekAt(1) == '/' {
				l.advanceN(2)
				break
			}
			text.WriteRune(l.advance())
		}
	}

	c := ast.New(ast.KindComment, start)
	c.Value = strings.TrimSpace(text.String())
	return c
}

func (l *Lexer) scanString(start position.Position) *ast.Node {
	quote := l.advance()
	var text strings.Builder
	for {
		r := l.peek()
		switch {
		case r == eof:
			l.rep.Error(start, "unterminated string")
			goto done
		case r == '\n' || r == '\r' || r == '\f':
			// leave the line break for the next token
			l.rep.Error(start, "newline found in string")
			goto done
		case r == quote:
			l.advance()
			goto done
		case r == '\\':
			l.advance()
			if l.peek() == '\n' || l.peek() == '\r' || l.peek() == '\f' {
				l.advance() // escaped line break continues the string
				continue
			}
			text.WriteRune(l.consumeEscape())
		default:
			text.WriteRune(l.advance())
		}
	}
done:
	s := ast.New(ast.KindString, start)
	s.Value = text.String()
	return s
}

func (l *Lexer) scanNumber(start position.Position) *ast.Node {
	var digits strings.Builder
	decimal := false

	if l.peek() == '+' || l.peek() == '-' {
		digits.WriteRune(l.advance())
	}
	for isDigit(l.peek()) {
		digits.WriteRune(l.advance())
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		decimal = true
		digits.WriteRune(l.advance())
		for isDigit(l.peek()) {
			digits.WriteRune(l.advance())
		}
	}
	if e := l.peek(); e == 'e' || e == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			decimal = true
			digits.WriteRune(l.advance())
			if l.peek() == '+' || l.peek() == '-' {
				digits.WriteRune(l.advance())
			}
			for isDigit(l.peek()) {
				digits.WriteRune(l.advance())
			}
		}
	}

	if l.peek() == '%' {
		l.advance()
		n := ast.New(ast.KindPercent, start)
		n.Decimal, _ = strconv.ParseFloat(digits.String(), 64)
		return n
	}

	dimension := ""
	if isIdentStart(l.peek()) || l.peek() == '\\' {
		dimension = l.consumeIdentSequence()
	}

	if decimal {
		n := ast.New(ast.KindDecimal, start)
		n.Decimal, _ = strconv.ParseFloat(digits.String(), 64)
		n.Value = dimension
		return n
	}

	n := ast.New(ast.KindInteger, start)
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		l.rep.Error(start, "integer %q is out of range", digits.String())
	}
	n.Integer = v
	n.Value = dimension
	return n
}

func (l *Lexer) scanIdentLike(start position.Position) *ast.Node {
	name := l.consumeIdentSequence()

	if l.peek() == '(' {
		if strings.EqualFold(name, "url") {
			return l.scanURL(start)
		}
		l.advance()
		f := ast.New(ast.KindFunction, start)
		f.Value = name
		return f
	}

	id := ast.New(ast.KindIdentifier, start)
	id.Value = name
	return id
}

func (l *Lexer) scanURL(start position.Position) *ast.Node {
	l.advance() // '('
	for isWhitespace(l.peek()) {
		l.advance()
	}

	u := ast.New(ast.KindURL, start)

	if q := l.peek(); q == '"' || q == '\'' {
		str := l.scanString(l.pos)
		u.Value = str.Value
	} else {
		var text strings.Builder
		for {
			r := l.peek()
			if r == eof {
				l.rep.Error(start, "unterminated url()")
				return u
			}
			if r == ')' || isWhitespace(r) {
				break
			}
			if r == '"' || r == '\'' || r == '(' {
				l.rep.Error(start, "invalid character %q in unquoted url()", string(r))
				l.advance()
				continue
			}
			if r == '\\' {
				l.advance()
				text.WriteRune(l.consumeEscape())
				continue
			}
			text.WriteRune(l.advance())
		}
		u.Value = text.String()
	}

	for isWhitespace(l.peek()) {
		l.advance()
	}
	if l.peek() == ')' {
		l.advance()
	} else {
		l.rep.Error(start, "url() must end with ')'")
	}
	return u
}

// consumeIdentSequence reads an identifier's characters, resolving escapes.
func (l *Lexer) consumeIdentSequence() string {
	var b strings.Builder
	for {
		r := l.peek()
		switch {
		case isIdentChar(r):
			b.WriteRune(l.advance())
		case r == '\\':
			l.advance()
			if l.peek() == eof {
				l.rep.Error(l.pos, "spurious '\\' at the end of the input")
				return b.String()
			}
			b.WriteRune(l.consumeEscape())
		default:
			return b.String()
		}
	}
}

// consumeEscape reads the remainder of an escape, the backslash already
// consumed.
func (l *Lexer) consumeEscape() rune {
	r := l.peek()
	if !isHexDigit(r) {
		return l.advance()
	}
	var hex strings.Builder
	for i := 0; i < 6 && isHexDigit(l.peek()); i++ {
		hex.WriteRune(l.advance())
	}
	// one whitespace after a hex escape belongs to the escape
	if isWhitespace(l.peek()) {
		l.advance()
	}
	v, _ := strconv.ParseUint(hex.String(), 16, 32)
	if v == 0 || v > utf8.MaxRune {
		return utf8.RuneError
	}
	return rune(v)
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r >= 0x80
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-'
}

// startsNumberAfterSign reports whether a sign character begins a numeric
// token given the two runes that follow it.
func startsNumberAfterSign(r1, r2 rune) bool {
	return isDigit(r1) || (r1 == '.' && isDigit(r2))
}
