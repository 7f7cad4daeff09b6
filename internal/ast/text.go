package ast

import (
	"strconv"
	"strings"
)

// Text renders the CSS source form of a token subtree. Whitespace tokens
// render as a single space since the lexer collapses runs; strings come back
// double-quoted with interior quotes escaped. Structural containers (List,
// ComponentValue, Declaration) render as the concatenation of their children,
// which is enough for selector and value text; full stylesheet output is the
// assembler's job.
func (n *Node) Text() string {
	var b strings.Builder
	n.text(&b)
	return b.String()
}

// TextOf renders a run of sibling nodes, such as a declaration value or a
// selector, by concatenating their Text.
func TextOf(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		n.text(&b)
	}
	return b.String()
}

func (n *Node) text(b *strings.Builder) {
	switch n.Kind {
	case KindEOF:
	case KindWhitespace:
		b.WriteString(" ")
	case KindComment:
		b.WriteString("/* ")
		b.WriteString(n.Value)
		b.WriteString(" */")
	case KindIdentifier:
		b.WriteString(n.Value)
	case KindAtKeyword:
		b.WriteString("@")
		b.WriteString(n.Value)
	case KindString:
		b.WriteString(strconv.Quote(n.Value))
	case KindInteger:
		b.WriteString(strconv.FormatInt(n.Integer, 10))
		b.WriteString(n.Value)
	case KindDecimal:
		b.WriteString(strconv.FormatFloat(n.Decimal, 'f', -1, 64))
		b.WriteString(n.Value)
	case KindPercent:
		b.WriteString(strconv.FormatFloat(n.Decimal, 'f', -1, 64))
		b.WriteString("%")
	case KindHash:
		b.WriteString("#")
		b.WriteString(n.Value)
	case KindURL:
		b.WriteString("url(")
		b.WriteString(n.Value)
		b.WriteString(")")
	case KindVariable:
		b.WriteString("$")
		b.WriteString(n.Value)
	case KindFunction:
		b.WriteString(n.Value)
		b.WriteString("(")
		for _, c := range n.children {
			c.text(b)
		}
		b.WriteString(")")
	case KindColon:
		b.WriteString(":")
	case KindSemicolon:
		b.WriteString(";")
	case KindComma:
		b.WriteString(",")
	case KindExclamation:
		b.WriteString("!")
		b.WriteString(n.Value)
	case KindPeriod:
		b.WriteString(".")
	case KindGreaterThan:
		b.WriteString(">")
	case KindLessThan:
		b.WriteString("<")
	case KindPlus:
		b.WriteString("+")
	case KindPrecede:
		b.WriteString("~")
	case KindMultiply:
		b.WriteString("*")
	case KindDivide:
		b.WriteString("/")
	case KindSubtract:
		b.WriteString("-")
	case KindEqual:
		b.WriteString("=")
	case KindReference:
		b.WriteString("&")
	case KindIncludes:
		b.WriteString("~=")
	case KindDashMatch:
		b.WriteString("|=")
	case KindPrefixMatch:
		b.WriteString("^=")
	case KindSuffixMatch:
		b.WriteString("$=")
	case KindSubstringMatch:
		b.WriteString("*=")
	case KindCDO:
		b.WriteString("<!--")
	case KindCDC:
		b.WriteString("-->")
	case KindOpenCurly:
		b.WriteString("{")
		for _, c := range n.children {
			c.text(b)
		}
		b.WriteString("}")
	case KindOpenSquare:
		b.WriteString("[")
		for _, c := range n.children {
			c.text(b)
		}
		b.WriteString("]")
	case KindOpenParen:
		b.WriteString("(")
		for _, c := range n.children {
			c.text(b)
		}
		b.WriteString(")")
	case KindCloseCurly:
		b.WriteString("}")
	case KindCloseSquare:
		b.WriteString("]")
	case KindCloseParen:
		b.WriteString(")")
	default:
		for _, c := range n.children {
			c.text(b)
		}
	}
}
