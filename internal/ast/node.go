// Package ast holds the node tree shared by the lexer, parser and compiler.
// A single tagged-union Node represents everything from raw tokens to whole
// stylesheets; the compiler rewrites trees in place by detaching, moving and
// splicing children.
package ast

import (
	"strconv"
	"strings"

	"github.com/WebWorksCollection/csspp/internal/position"
)

// Node is one tree vertex. Which fields are meaningful depends on Kind:
// Value carries identifier/at-keyword/string/declaration-name text and the
// dimension of a number; Integer and Decimal carry numeric token values.
// For a Declaration node, Integer records whether the source had a colon
// after the property name, which the compiler needs to tell nested rules
// from property groups. For a bracket node, Integer records that the
// closing bracket was missing from the source.
type Node struct {
	Kind    Kind
	Pos     position.Position
	Value   string
	Integer int64
	Decimal float64

	children []*Node
}

// New creates a node of the given kind at the given position.
func New(kind Kind, pos position.Position) *Node {
	return &Node{Kind: kind, Pos: pos}
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the i-th child. Out-of-range indexes panic, as a programming
// error.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// LastChild returns the last child, or nil when there are none.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// Children returns the live child slice. Callers iterate it; structural
// changes go through the mutation helpers so sibling order stays coherent.
func (n *Node) Children() []*Node {
	return n.children
}

// AddChild appends a child.
func (n *Node) AddChild(c *Node) {
	n.children = append(n.children, c)
}

// InsertChild inserts a child at index i, shifting later siblings right.
func (n *Node) InsertChild(i int, c *Node) {
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// RemoveChild detaches the child at index i. The detached subtree is
// discarded by the caller; no further references to it are kept here.
func (n *Node) RemoveChild(i int) {
	n.children = append(n.children[:i], n.children[i+1:]...)
}

// ReplaceChild swaps the child at index i for another node.
func (n *Node) ReplaceChild(i int, c *Node) {
	n.children[i] = c
}

// Splice replaces the child at index i with zero or more nodes. It is the
// workhorse of at-rule expansion: the construct at i vanishes and its
// replacement content takes its place in order.
func (n *Node) Splice(i int, repl []*Node) {
	out := make([]*Node, 0, len(n.children)-1+len(repl))
	out = append(out, n.children[:i]...)
	out = append(out, repl...)
	out = append(out, n.children[i+1:]...)
	n.children = out
}

// TakeChildren detaches and returns all children, leaving the node empty.
func (n *Node) TakeChildren() []*Node {
	c := n.children
	n.children = nil
	return c
}

// Clone returns a deep copy of the node and its subtree. Positions are
// preserved so diagnostics keep pointing at the original source.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:    n.Kind,
		Pos:     n.Pos,
		Value:   n.Value,
		Integer: n.Integer,
		Decimal: n.Decimal,
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			c.children[i] = child.Clone()
		}
	}
	return c
}

// String renders a one-line description of the node without its children.
func (n *Node) String() string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case KindInteger:
		b.WriteString(" ")
		b.WriteString(strconv.FormatInt(n.Integer, 10))
		if n.Value != "" {
			b.WriteString(" \"" + n.Value + "\"")
		}
	case KindDecimal:
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(n.Decimal, 'g', -1, 64))
		if n.Value != "" {
			b.WriteString(" \"" + n.Value + "\"")
		}
	case KindPercent:
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(n.Decimal, 'g', -1, 64))
	default:
		if n.Value != "" {
			b.WriteString(" \"" + n.Value + "\"")
		}
	}
	return b.String()
}

// Dump renders the subtree as indented text, one node per line. Tests and
// debugging compare these dumps; output shape is stable.
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteString(n.String())
	b.WriteString("\n")
	for _, c := range n.children {
		c.dump(b, depth+1)
	}
}
