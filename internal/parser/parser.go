// Package parser turns a token stream into a node tree following the CSS3
// grammar, extended with nested rules inside declaration blocks and
// free-form at-rules. It performs block matching and list grouping only;
// all semantic interpretation is left to the compiler.
package parser

import (
	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/errs"
)

// valueContext selects the terminator set of a component value list.
type valueContext int

const (
	ctxRule    valueContext = iota // at-rule or qualified rule prelude
	ctxDecl                        // declaration value
	ctxCurly                       // interior of { }
	ctxBracket                     // interior of [ ], ( ) and function arguments
)

// Parser builds a node tree from a token stream. It never gives up on a
// syntax error: problems are reported and a best-effort node is produced so
// later passes and tooling still see a tree.
type Parser struct {
	src    TokenSource
	rep    *errs.Reporter
	cur    *ast.Node
	replay bool
}

// New creates a parser pulling tokens from src, usually a lexer.
func New(src TokenSource, rep *errs.Reporter) *Parser {
	p := &Parser{src: src, rep: rep}
	p.next()
	return p
}

// NewFromNodes creates a parser replaying already-lexed nodes, used when
// block contents are reinterpreted as declarations or rules. Bracket nodes
// in a replay are complete blocks and are taken as-is.
func NewFromNodes(nodes []*ast.Node, rep *errs.Reporter) *Parser {
	p := &Parser{src: newNodeSource(nodes), rep: rep, replay: true}
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.src.NextToken()
}

func (p *Parser) skipWhitespace() {
	for p.cur.Kind == ast.KindWhitespace {
		p.next()
	}
}

// trimTrailingWhitespace removes at most one whitespace token from the end
// of a child list, so blocks and values do not end in padding.
func (p *Parser) trimTrailingWhitespace(n *ast.Node) {
	if last := n.LastChild(); last != nil && last.Kind == ast.KindWhitespace {
		n.RemoveChild(n.Len() - 1)
	}
}

// Stylesheet parses a whole source. The returned List node holds at-rules,
// qualified rules, comments and variable assignments in source order.
func (p *Parser) Stylesheet() *ast.Node {
	return p.ruleList()
}

// RuleList parses a sequence of rules, as found in the body of a media or
// conditional at-rule.
func (p *Parser) RuleList() *ast.Node {
	return p.ruleList()
}

func (p *Parser) ruleList() *ast.Node {
	list := ast.New(ast.KindList, p.cur.Pos)
	for {
		rule := p.Rule()
		if rule.Kind == ast.KindEOF {
			return list
		}
		list.AddChild(rule)
	}
}

// Rule parses one at-rule or qualified rule, skipping whitespace and HTML
// comment delimiters before it. At the end of input, and after a stray
// closing bracket, an EOF sentinel is returned instead.
func (p *Parser) Rule() *ast.Node {
	for {
		switch p.cur.Kind {
		case ast.KindWhitespace, ast.KindCDO, ast.KindCDC:
			p.next()

		case ast.KindEOF:
			return p.cur

		case ast.KindComment:
			c := p.cur
			p.next()
			return c

		case ast.KindAtKeyword:
			at := p.cur
			p.next()
			return p.atRule(at)

		case ast.KindVariable:
			return p.declaration()

		case ast.KindCloseCurly, ast.KindCloseSquare, ast.KindCloseParen:
			p.rep.Error(p.cur.Pos, "unexpected %s, a rule cannot start with a closing bracket", p.cur.Kind)
			eof := ast.New(ast.KindEOF, p.cur.Pos)
			p.next()
			return eof

		default:
			if rule := p.qualifiedRule(); rule != nil {
				return rule
			}
		}
	}
}

// atRule parses the remainder of an at-rule, its at-keyword already
// consumed. The prelude component values and the optional block become
// children of the at-keyword node; the at-rule ends at a block or a ';'.
func (p *Parser) atRule(at *ast.Node) *ast.Node {
	p.skipWhitespace()
	p.componentValueList(at, ctxRule, ast.KindEOF)
	p.trimTrailingWhitespace(at)
	if last := at.LastChild(); last != nil && last.Kind == ast.KindOpenCurly {
		return at
	}
	if p.cur.Kind == ast.KindSemicolon {
		p.next()
		return at
	}
	p.rep.Error(at.Pos, "at-rule @%s must end with a block ('{ ... }') or a ';'", at.Value)
	return at
}

// qualifiedRule parses selector component values up to and including a
// declaration block. The block is the last child of the returned
// ComponentValue node. A rule without a block is reported and dropped.
func (p *Parser) qualifiedRule() *ast.Node {
	rule := ast.New(ast.KindComponentValue, p.cur.Pos)
	p.componentValueList(rule, ctxRule, ast.KindEOF)
	if last := rule.LastChild(); last != nil && last.Kind == ast.KindOpenCurly {
		return rule
	}
	if rule.Len() == 0 {
		p.rep.Error(p.cur.Pos, "a qualified rule cannot be empty, a selector list was expected")
	} else {
		p.rep.Error(rule.Pos, "a qualified rule must end with a block ('{ ... }')")
	}
	if p.cur.Kind == ast.KindSemicolon {
		p.next()
	}
	return nil
}

// DeclarationList parses the contents of a declaration block: declarations,
// variable assignments, nested rules and nested at-rules. The source must
// be consumed to its end; stopping early is reported with the offending
// token.
func (p *Parser) DeclarationList() *ast.Node {
	list := ast.New(ast.KindList, p.cur.Pos)
	for {
		for p.cur.Kind == ast.KindWhitespace || p.cur.Kind == ast.KindSemicolon {
			p.next()
		}
		switch p.cur.Kind {
		case ast.KindEOF:
			return list

		case ast.KindComment:
			list.AddChild(p.cur)
			p.next()

		case ast.KindAtKeyword:
			at := p.cur
			p.next()
			list.AddChild(p.atRule(at))

		case ast.KindIdentifier, ast.KindVariable, ast.KindReference:
			list.AddChild(p.declaration())

		default:
			p.rep.Error(p.cur.Pos, "expected the end of the block, found %s instead", p.cur.Kind)
			return list
		}
	}
}

// declaration parses one `name : value` run, covering plain declarations,
// variable assignments and the selector-shaped runs that introduce nested
// rules. The colon's presence is recorded in the Integer field. A `!`
// marker identifier overwrites the exclamation token's value and rides as
// the trailing child, where the compiler looks for "global" and
// "important".
func (p *Parser) declaration() *ast.Node {
	decl := ast.New(ast.KindDeclaration, p.cur.Pos)
	var name, space *ast.Node
	switch p.cur.Kind {
	case ast.KindIdentifier:
		name = p.cur
		decl.Value = name.Value
		p.next()
	case ast.KindVariable:
		name = p.cur
		decl.Value = "$" + name.Value
		p.next()
	}
	if name != nil {
		if p.cur.Kind == ast.KindWhitespace {
			space = p.cur
			p.next()
		}
		if p.cur.Kind == ast.KindColon {
			decl.Integer = 1
			space = nil
			p.next()
			p.skipWhitespace()
		}
	}

	p.componentValueList(decl, ctxDecl, ast.KindEOF)
	p.trimTrailingWhitespace(decl)

	for p.cur.Kind == ast.KindExclamation {
		excl := p.cur
		p.next()
		p.skipWhitespace()
		if p.cur.Kind == ast.KindIdentifier {
			excl.Value = p.cur.Value
			p.next()
			p.componentValueList(decl, ctxDecl, ast.KindEOF)
			p.trimTrailingWhitespace(decl)
			decl.AddChild(excl)
		} else {
			p.rep.Error(excl.Pos, "a '!' must be followed by an identifier such as \"important\" or \"global\"")
			p.componentValueList(decl, ctxDecl, ast.KindEOF)
			p.trimTrailingWhitespace(decl)
		}
	}

	if decl.Integer == 0 {
		if last := decl.LastChild(); last != nil && last.Kind == ast.KindOpenCurly {
			// a nested rule; restore the selector tokens consumed above
			if space != nil && decl.Child(0) != last {
				decl.InsertChild(0, space)
			}
			if name != nil {
				decl.InsertChild(0, name)
			}
		} else {
			p.rep.Error(decl.Pos, "expected a ':' after the name of a declaration")
		}
	}

	if p.cur.Kind == ast.KindSemicolon {
		p.next()
	}
	return decl
}

// componentValueList reads component values into parent until a terminator
// of the given context. The terminator is left in the stream for the
// caller, with one exception: a {}-block in rule or declaration context is
// consumed and ends the list immediately, as the last item collected.
func (p *Parser) componentValueList(parent *ast.Node, ctx valueContext, closer ast.Kind) {
	for {
		switch p.cur.Kind {
		case ast.KindEOF:
			return

		case ast.KindCloseCurly, ast.KindCloseSquare, ast.KindCloseParen:
			if ctx == ctxRule || ctx == ctxDecl || p.cur.Kind == closer {
				return
			}
			// an unmatched closer inside a block stays a plain token
			parent.AddChild(p.cur)
			p.next()

		case ast.KindSemicolon:
			if ctx == ctxRule || ctx == ctxDecl {
				return
			}
			parent.AddChild(p.cur)
			p.next()

		case ast.KindExclamation:
			if ctx == ctxDecl {
				return
			}
			parent.AddChild(p.cur)
			p.next()

		case ast.KindAtKeyword, ast.KindCDO, ast.KindCDC:
			if ctx == ctxRule || ctx == ctxDecl {
				return
			}
			parent.AddChild(p.cur)
			p.next()

		case ast.KindOpenCurly:
			if ctx == ctxBracket {
				// a declaration block cannot open inside brackets; leave
				// the brace for the enclosing rule
				return
			}
			p.trimTrailingWhitespace(parent)
			open := p.cur
			p.next()
			if !p.replay {
				p.block(open)
			}
			parent.AddChild(open)
			if ctx != ctxCurly {
				return
			}

		case ast.KindOpenSquare, ast.KindOpenParen, ast.KindFunction:
			open := p.cur
			p.next()
			if !p.replay {
				p.block(open)
			}
			parent.AddChild(open)

		default:
			parent.AddChild(p.cur)
			p.next()
		}
	}
}

// block parses the interior of an already-consumed opening bracket and
// attaches it as children, then expects the matching closing bracket. A
// missing closer is reported and the partially filled node returned anyway.
func (p *Parser) block(open *ast.Node) *ast.Node {
	closer := open.Kind.Mirror()
	ctx := ctxBracket
	if open.Kind == ast.KindOpenCurly {
		ctx = ctxCurly
	}
	p.componentValueList(open, ctx, closer)
	p.trimTrailingWhitespace(open)
	if p.cur.Kind == closer {
		p.next()
	} else {
		p.rep.Error(open.Pos, "missing closing %q for this block", closerText(closer))
		// Integer marks the block as unterminated; selector validation
		// rejects such brackets later.
		open.Integer = 1
	}
	return open
}

func closerText(k ast.Kind) string {
	switch k {
	case ast.KindCloseCurly:
		return "}"
	case ast.KindCloseSquare:
		return "]"
	default:
		return ")"
	}
}
