// Package assembler writes a compiled tree back out as CSS text.
//
// Two styles are supported: Expanded, the readable one-declaration-per-line
// form, and Compressed, a single line carrying only the whitespace CSS
// cannot do without. Comments survive in expanded output; compressed output
// keeps just the "!"-prefixed ones, the form minifiers conventionally
// preserve.
package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/WebWorksCollection/csspp/internal/ast"
)

// Style selects the output form.
type Style int

const (
	Expanded Style = iota
	Compressed
)

func (s Style) String() string {
	if s == Compressed {
		return "compressed"
	}
	return "expanded"
}

// ParseStyle maps a flag value such as "compressed" to its Style.
func ParseStyle(name string) (Style, error) {
	switch name {
	case "expanded":
		return Expanded, nil
	case "compressed":
		return Compressed, nil
	default:
		return Expanded, fmt.Errorf("unknown output style %q (want \"expanded\" or \"compressed\")", name)
	}
}

// Assembler serializes trees to a single writer.
type Assembler struct {
	w     io.Writer
	style Style
	err   error
	wrote bool
}

// New creates an assembler writing to w.
func New(w io.Writer) *Assembler {
	return &Assembler{w: w}
}

// Output writes the tree in the given style. The first write error stops
// the output and is returned.
func (a *Assembler) Output(root *ast.Node, style Style) error {
	a.style = style
	a.err = nil
	a.wrote = false
	if root == nil {
		return nil
	}
	a.items(root.Children(), 0)
	if style == Compressed && a.wrote {
		a.print("\n")
	}
	return a.err
}

func (a *Assembler) print(s string) {
	if a.err != nil || s == "" {
		return
	}
	a.wrote = true
	_, a.err = io.WriteString(a.w, s)
}

// items renders one list of items, the top level of a sheet or the inside
// of a block. In compressed style a declaration's ';' is deferred until
// another item follows it, so blocks never end in a stray semicolon.
func (a *Assembler) items(nodes []*ast.Node, depth int) {
	pending := false
	for _, n := range nodes {
		if n.Kind == ast.KindComment && a.style == Compressed && !strings.HasPrefix(n.Value, "!") {
			continue
		}
		if pending {
			a.print(";")
		}
		pending = false

		switch n.Kind {
		case ast.KindComment:
			a.comment(n, depth)
		case ast.KindAtKeyword:
			a.atRule(n, depth)
		case ast.KindComponentValue:
			a.rule(n, depth)
		case ast.KindDeclaration:
			a.declaration(n, depth)
			pending = a.style == Compressed
		}
	}
}

func (a *Assembler) comment(n *ast.Node, depth int) {
	text := "/* " + n.Value + " */"
	if strings.HasPrefix(n.Value, "!") {
		text = "/*" + n.Value + " */"
	}
	if a.style == Compressed {
		a.print(text)
		return
	}
	a.print(a.indent(depth) + text + "\n")
}

func (a *Assembler) atRule(n *ast.Node, depth int) {
	prelude := n.Children()
	block := n.LastChild()
	if block != nil && block.Kind == ast.KindOpenCurly {
		prelude = prelude[:len(prelude)-1]
	} else {
		block = nil
	}

	head := "@" + n.Value
	if a.style == Compressed {
		if p := compact(prelude); p != "" {
			head += " " + p
		}
		if block == nil {
			a.print(head + ";")
			return
		}
		a.print(head + "{")
		a.items(block.Children(), depth+1)
		a.print("}")
		return
	}

	if p := strings.TrimSpace(ast.TextOf(prelude)); p != "" {
		head += " " + p
	}
	if block == nil {
		a.print(a.indent(depth) + head + ";\n")
		return
	}
	a.print(a.indent(depth) + head + " {\n")
	a.items(block.Children(), depth+1)
	a.print(a.indent(depth) + "}\n")
}

func (a *Assembler) rule(n *ast.Node, depth int) {
	if n.Len() < 2 {
		return
	}
	selector := n.Children()[:n.Len()-1]
	block := n.LastChild()

	if a.style == Compressed {
		a.print(compact(selector) + "{")
		a.items(block.Children(), depth+1)
		a.print("}")
		return
	}
	a.print(a.indent(depth) + strings.TrimSpace(ast.TextOf(selector)) + " {\n")
	a.items(block.Children(), depth+1)
	a.print(a.indent(depth) + "}\n")
}

func (a *Assembler) declaration(n *ast.Node, depth int) {
	if a.style == Compressed {
		text := n.Value + ":" + declarationValue(n, a.style)
		a.print(text)
		return
	}
	text := n.Value + ":"
	if value := declarationValue(n, a.style); value != "" {
		text += " " + value
	}
	a.print(a.indent(depth) + text + ";\n")
}

// declarationValue renders a declaration's value tokens. The trailing
// "!" marker child renders as "!important" with a separating space in
// expanded style only.
func declarationValue(d *ast.Node, style Style) string {
	kids := d.Children()
	n := len(kids)
	if n > 0 && kids[n-1].Kind == ast.KindExclamation {
		value := strings.TrimSpace(ast.TextOf(kids[:n-1]))
		bang := "!" + kids[n-1].Value
		if value == "" {
			return bang
		}
		if style == Expanded {
			return value + " " + bang
		}
		return value + bang
	}
	return strings.TrimSpace(ast.TextOf(kids))
}

func (a *Assembler) indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// compact renders selector or prelude tokens with the whitespace around
// commas and combinators removed.
func compact(tokens []*ast.Node) string {
	var b strings.Builder
	for i, tk := range tokens {
		if tk.Kind == ast.KindWhitespace {
			if i == 0 || i == len(tokens)-1 {
				continue
			}
			if tight(tokens[i-1].Kind) || tight(tokens[i+1].Kind) {
				continue
			}
			b.WriteByte(' ')
			continue
		}
		b.WriteString(tk.Text())
	}
	return b.String()
}

// tight reports the token kinds that need no space on either side.
func tight(k ast.Kind) bool {
	switch k {
	case ast.KindComma, ast.KindGreaterThan, ast.KindPlus, ast.KindPrecede:
		return true
	}
	return false
}
