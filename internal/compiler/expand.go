package compiler

import (
	"os"
	"strings"

	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/lexer"
	"github.com/WebWorksCollection/csspp/internal/parser"
	"github.com/WebWorksCollection/csspp/internal/position"
)

// mixin is a recorded @mixin definition. The body block is kept as parsed
// and cloned on every @include so each expansion rewrites its own copy.
type mixin struct {
	name   string
	params []string
	body   *ast.Node
	pos    position.Position
}

// expandItems is the expansion walk over one list of items, either the top
// level of a stylesheet or the contents of a block. Splicing constructs
// re-enter the walk at their own index so freshly inserted content is
// expanded in the scope that is active right now.
func (c *Compiler) expandItems(list *ast.Node, inBody bool) {
	for i := 0; i < list.Len(); {
		switch item := list.Child(i); item.Kind {
		case ast.KindDeclaration:
			i = c.expandDeclaration(list, i)
		case ast.KindAtKeyword:
			i = c.expandAtRule(list, i, inBody)
		case ast.KindComponentValue:
			c.expandRule(item)
			i++
		default:
			i++
		}
	}
}

// expandRule expands a qualified rule: variables in the selector, then the
// body in a fresh scope frame.
func (c *Compiler) expandRule(rule *ast.Node) {
	c.expandVariablesIn(rule)
	block := rule.LastChild()
	if block == nil || block.Kind != ast.KindOpenCurly {
		return
	}
	c.pushScope()
	defer c.popScope()
	c.processBody(block)
}

// processBody brings a {}-block from raw token form to declaration items
// and expands each of them. The caller owns the scope frame.
func (c *Compiler) processBody(block *ast.Node) {
	if rawTokens(block) {
		p := parser.NewFromNodes(block.TakeChildren(), c.rep)
		for _, item := range p.DeclarationList().TakeChildren() {
			block.AddChild(item)
		}
	}
	c.expandItems(block, true)
}

// expandAtBody treats an at-rule's block as a nested stylesheet: @media and
// other conditional at-rules contain rules, not declarations.
func (c *Compiler) expandAtBody(block *ast.Node) {
	if rawTokens(block) {
		p := parser.NewFromNodes(block.TakeChildren(), c.rep)
		for _, item := range p.RuleList().TakeChildren() {
			block.AddChild(item)
		}
	}
	c.expandItems(block, false)
}

// rawTokens reports whether a block still holds unparsed tokens rather than
// parsed items. Freshly parsed blocks hold tokens; blocks spliced back by
// the expansion hold Declaration and rule items.
func rawTokens(block *ast.Node) bool {
	for _, child := range block.Children() {
		switch child.Kind {
		case ast.KindDeclaration, ast.KindAtKeyword, ast.KindComment, ast.KindComponentValue:
		default:
			return true
		}
	}
	return false
}

// expandDeclaration handles one declaration item: variable assignments are
// applied to the scope and removed, nested rules and property groups get
// their bodies expanded in place, plain declarations get their values
// expanded.
func (c *Compiler) expandDeclaration(list *ast.Node, i int) int {
	decl := list.Child(i)
	if strings.HasPrefix(decl.Value, "$") {
		c.applyAssignment(decl)
		list.RemoveChild(i)
		return i
	}
	c.expandVariablesIn(decl)
	switch {
	case isNestedRule(decl):
		c.pushScope()
		c.processBody(decl.LastChild())
		c.popScope()
	case isPropertyGroup(decl):
		c.pushScope()
		c.processBody(decl.Child(0))
		c.popScope()
	case decl.Integer == 0:
		// the parser already reported the missing colon; drop the leftover
		list.RemoveChild(i)
		return i
	}
	return i + 1
}

// applyAssignment binds a $variable declaration. Values are expanded at
// assignment time, so a stored value never references another variable and
// self-references cannot loop.
func (c *Compiler) applyAssignment(decl *ast.Node) {
	c.expandVariablesIn(decl)
	value := decl.TakeChildren()
	global := false
	if n := len(value); n > 0 {
		last := value[n-1]
		if last.Kind == ast.KindExclamation && last.Value == "global" {
			global = true
			value = value[:n-1]
		}
	}
	c.setVariable(strings.TrimPrefix(decl.Value, "$"), trimSpaces(value), global)
}

// isNestedRule reports whether a declaration parsed as a nested rule: its
// last child is a {}-block and it is not a property group. The plain form
// carries the full selector in its children; the colon form (b:hover) keeps
// the leading name in Value and needs it restored when the rule is lifted.
func isNestedRule(d *ast.Node) bool {
	last := d.LastChild()
	if last == nil || last.Kind != ast.KindOpenCurly {
		return false
	}
	if d.Integer == 0 {
		return true
	}
	return d.Len() > 1
}

// isPropertyGroup reports whether a declaration is a property group: a
// property name, a colon and a single {}-block of sub-declarations.
func isPropertyGroup(d *ast.Node) bool {
	return d.Integer != 0 && d.Len() == 1 && d.Child(0).Kind == ast.KindOpenCurly
}

// expandVariablesIn replaces variable references among n's children with
// clones of their bound tokens. Function and bracket arguments are walked
// too; {}-blocks are left alone since their contents expand under their own
// scope frame.
func (c *Compiler) expandVariablesIn(n *ast.Node) {
	for i := 0; i < n.Len(); {
		switch child := n.Child(i); child.Kind {
		case ast.KindVariable:
			value, ok := c.getVariable(child.Value, false)
			if !ok {
				if c.emptyOnUndef {
					n.RemoveChild(i)
					continue
				}
				c.rep.Error(child.Pos, "the variable $%s is not defined", child.Value)
				i++
				continue
			}
			repl := make([]*ast.Node, len(value))
			for k, v := range value {
				repl[k] = v.Clone()
			}
			n.Splice(i, repl)
			i += len(repl)
		case ast.KindFunction, ast.KindOpenParen, ast.KindOpenSquare:
			c.expandVariablesIn(child)
			i++
		default:
			i++
		}
	}
}

// expandAtRule dispatches one at-rule. The return value is the index the
// walk continues at: the same index after a removal or a splice that needs
// revisiting, the next one when the at-rule stays.
func (c *Compiler) expandAtRule(list *ast.Node, i int, inBody bool) int {
	at := list.Child(i)
	switch at.Value {
	case "import":
		return c.expandImport(list, i)

	case "mixin":
		c.defineMixin(at)
		list.RemoveChild(i)
		return i

	case "include":
		return c.expandInclude(list, i, inBody)

	case "if":
		return c.expandConditional(list, i, inBody)

	case "else":
		c.rep.Error(at.Pos, "'@else' is only allowed immediately after '@if' or '@else if'")
		list.RemoveChild(i)
		return i

	case "error", "warning", "info", "debug":
		c.reportDirective(at)
		list.RemoveChild(i)
		return i

	case "validate":
		if inBody {
			// stays in the rule body; the validation pass consumes it
			return i + 1
		}
		if name := atRuleName(at); name != "" {
			c.validating = name
		} else {
			c.rep.Error(at.Pos, "@validate requires a program name")
		}
		list.RemoveChild(i)
		return i

	default:
		// plain CSS at-rules pass through; a block still expands inside
		c.expandVariablesIn(at)
		if block := at.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
			if declarationBodied[at.Value] {
				c.pushScope()
				c.processBody(block)
				c.popScope()
			} else {
				c.expandAtBody(block)
			}
		}
		return i + 1
	}
}

// declarationBodied names the plain CSS at-rules whose block holds
// declarations the way @font-face's does. Any other at-rule block is
// treated as a nested stylesheet the way @media's is.
var declarationBodied = map[string]bool{
	"font-face":     true,
	"page":          true,
	"viewport":      true,
	"counter-style": true,
	"property":      true,
}

// expandImport splices the named file's rules in place of the @import and
// revisits them so they expand in the current scope. Only the single-string
// form is a preprocessor import; url() and media-qualified imports are
// plain CSS and pass through. Each file is spliced at most once per
// compile, which also breaks import cycles.
func (c *Compiler) expandImport(list *ast.Node, i int) int {
	at := list.Child(i)
	name := importTarget(at)
	if name == "" {
		c.expandVariablesIn(at)
		return i + 1
	}
	path, err := c.FindFile(name)
	if err != nil {
		c.rep.Error(at.Pos, "cannot find %q for @import", name)
		list.RemoveChild(i)
		return i
	}
	if c.imported.Has(path) {
		list.RemoveChild(i)
		return i
	}
	c.imported.Add(path)
	data, err := os.ReadFile(path)
	if err != nil {
		c.rep.Error(at.Pos, "cannot read %q for @import", path)
		list.RemoveChild(i)
		return i
	}
	sheet := parser.New(lexer.New(string(data), path, c.rep), c.rep).Stylesheet()
	list.Splice(i, sheet.TakeChildren())
	return i
}

// importTarget returns the file name when the @import prelude is exactly
// one string, and "" for every other form.
func importTarget(at *ast.Node) string {
	name := ""
	for _, child := range at.Children() {
		switch child.Kind {
		case ast.KindWhitespace, ast.KindComment:
		case ast.KindString:
			if name != "" {
				return ""
			}
			name = child.Value
		default:
			return ""
		}
	}
	return name
}

// defineMixin records a @mixin definition. The name is either a plain
// identifier or a function form with variable parameters.
func (c *Compiler) defineMixin(at *ast.Node) {
	block := at.LastChild()
	if block == nil || block.Kind != ast.KindOpenCurly {
		c.rep.Error(at.Pos, "@mixin requires a '{ ... }' body")
		return
	}
	var head *ast.Node
	for _, child := range at.Children()[:at.Len()-1] {
		switch child.Kind {
		case ast.KindWhitespace, ast.KindComment:
			continue
		}
		if head != nil {
			c.rep.Error(child.Pos, "unexpected %s after the @mixin name", child.Kind)
			return
		}
		head = child
	}

	switch {
	case head == nil:
		c.rep.Error(at.Pos, "@mixin requires a name")
	case head.Kind == ast.KindIdentifier:
		c.mixins[head.Value] = &mixin{name: head.Value, body: block, pos: at.Pos}
	case head.Kind == ast.KindFunction:
		params, ok := c.mixinParams(head)
		if ok {
			c.mixins[head.Value] = &mixin{name: head.Value, params: params, body: block, pos: at.Pos}
		}
	default:
		c.rep.Error(head.Pos, "a @mixin name must be an identifier, found %s", head.Kind)
	}
}

func (c *Compiler) mixinParams(fn *ast.Node) ([]string, bool) {
	var params []string
	for _, a := range fn.Children() {
		switch a.Kind {
		case ast.KindWhitespace, ast.KindComment, ast.KindComma:
		case ast.KindVariable:
			params = append(params, a.Value)
		default:
			c.rep.Error(a.Pos, "mixin parameters must be variables, found %s", a.Kind)
			return nil, false
		}
	}
	return params, true
}

// expandInclude clones the named mixin's body, binds the call arguments in
// a fresh frame, expands the clone in the calling context and splices the
// result in place of the @include.
func (c *Compiler) expandInclude(list *ast.Node, i int, inBody bool) int {
	at := list.Child(i)
	c.expandVariablesIn(at)

	var name string
	var args [][]*ast.Node
	head, only := atRuleHead(at)
	switch {
	case head == nil:
		c.rep.Error(at.Pos, "@include requires a mixin name")
		list.RemoveChild(i)
		return i
	case head.Kind == ast.KindIdentifier:
		name = head.Value
	case head.Kind == ast.KindFunction:
		name = head.Value
		args = splitArgs(head.Children())
	default:
		c.rep.Error(head.Pos, "@include requires a mixin name, found %s", head.Kind)
		list.RemoveChild(i)
		return i
	}
	if !only {
		c.rep.Error(at.Pos, "unexpected content after the mixin name in @include")
	}

	m, ok := c.mixins[name]
	if !ok {
		c.rep.Error(at.Pos, "mixin %q is not defined", name)
		list.RemoveChild(i)
		return i
	}
	if len(args) != len(m.params) {
		c.rep.Error(at.Pos, "mixin %q expects %d argument(s), %d given",
			name, len(m.params), len(args))
	}

	body := m.body.Clone()
	c.pushScope()
	defer c.popScope()
	for k, param := range m.params {
		if k < len(args) {
			c.setVariable(param, args[k], false)
		} else {
			c.setVariable(param, nil, false)
		}
	}
	if inBody {
		c.processBody(body)
	} else {
		c.expandAtBody(body)
	}

	items := body.TakeChildren()
	list.Splice(i, items)
	return i + len(items)
}

// splitArgs splits a call argument list on commas. A trailing comma is
// tolerated; interior empty arguments are kept so positions line up.
func splitArgs(tokens []*ast.Node) [][]*ast.Node {
	var args [][]*ast.Node
	var cur []*ast.Node
	for _, tk := range tokens {
		if tk.Kind == ast.KindComma {
			args = append(args, trimSpaces(cur))
			cur = nil
			continue
		}
		cur = append(cur, tk)
	}
	if len(cur) > 0 {
		args = append(args, trimSpaces(cur))
	}
	return args
}

// expandConditional evaluates an @if/@else if/@else chain, removes the
// whole chain from the tree and splices the first matching branch's content
// back in for the walk to revisit. Branch bodies parse as declarations
// inside a rule and as rules at the top level.
func (c *Compiler) expandConditional(list *ast.Node, i int, inBody bool) int {
	type branch struct {
		at    *ast.Node
		cond  []*ast.Node // nil for a final @else
		block *ast.Node
		bad   bool
	}
	var chain []branch

	first := list.Child(i)
	if block := first.LastChild(); block == nil || block.Kind != ast.KindOpenCurly {
		c.rep.Error(first.Pos, "@if requires a '{ ... }' block")
		list.RemoveChild(i)
		return i
	}
	cond := meaningful(first.Children()[:first.Len()-1])
	if len(cond) == 0 {
		c.rep.Error(first.Pos, "@if must be followed by a condition")
		chain = append(chain, branch{at: first, block: first.LastChild(), bad: true})
	} else {
		chain = append(chain, branch{at: first, cond: cond, block: first.LastChild()})
	}

	j := i + 1
	for j < list.Len() {
		n := list.Child(j)
		if n.Kind != ast.KindAtKeyword || n.Value != "else" {
			break
		}
		b := branch{at: n}
		if block := n.LastChild(); block == nil || block.Kind != ast.KindOpenCurly {
			c.rep.Error(n.Pos, "'@else' requires a '{ ... }' block")
			b.bad = true
		} else {
			b.block = block
			pre := meaningful(n.Children()[:n.Len()-1])
			switch {
			case len(pre) == 0:
				// final else, no condition
			case pre[0].Kind == ast.KindIdentifier && pre[0].Value == "if":
				if len(pre) == 1 {
					c.rep.Error(n.Pos, "'@else if' must be followed by a condition")
					b.bad = true
				} else {
					b.cond = pre[1:]
				}
			default:
				c.rep.Error(n.Pos, "'@else' cannot take a condition, use '@else if'")
				b.bad = true
			}
		}
		chain = append(chain, b)
		j++
		if !b.bad && b.block != nil && b.cond == nil {
			break
		}
	}

	// first branch whose condition holds wins; a final @else always does
	var chosen *ast.Node
	for _, b := range chain {
		if b.bad {
			continue
		}
		if b.cond == nil {
			chosen = b.block
			break
		}
		holder := ast.New(ast.KindList, b.at.Pos)
		for _, tk := range b.cond {
			holder.AddChild(tk)
		}
		c.expandVariablesIn(holder)
		if c.evalCondition(holder.Children(), b.at.Pos) {
			chosen = b.block
			break
		}
	}

	for n := j - i; n > 0; n-- {
		list.RemoveChild(i)
	}
	if chosen == nil {
		return i
	}

	p := parser.NewFromNodes(chosen.TakeChildren(), c.rep)
	var items []*ast.Node
	if inBody {
		items = p.DeclarationList().TakeChildren()
	} else {
		items = p.RuleList().TakeChildren()
	}
	for k, item := range items {
		list.InsertChild(i+k, item)
	}
	return i
}

// reportDirective turns @error, @warning, @info and @debug into reporter
// messages. The at-rule itself produces no output.
func (c *Compiler) reportDirective(at *ast.Node) {
	c.expandVariablesIn(at)
	pre := meaningful(at.Children())
	var msg string
	if len(pre) == 1 && pre[0].Kind == ast.KindString {
		msg = pre[0].Value
	} else {
		msg = strings.TrimSpace(ast.TextOf(at.Children()))
	}
	switch at.Value {
	case "error":
		c.rep.Error(at.Pos, "%s", msg)
	case "warning":
		c.rep.Warning(at.Pos, "%s", msg)
	case "info":
		c.rep.Info(at.Pos, "%s", msg)
	default:
		c.rep.Report(at.Pos, errs.SeverityDebug, "%s", msg)
	}
}

// atRuleName extracts the single string or identifier argument of an
// at-rule prelude, or "" when the prelude has any other shape.
func atRuleName(at *ast.Node) string {
	name := ""
	for _, child := range at.Children() {
		switch child.Kind {
		case ast.KindWhitespace, ast.KindComment:
		case ast.KindString, ast.KindIdentifier:
			if name != "" {
				return ""
			}
			name = child.Value
		default:
			return ""
		}
	}
	return name
}

// atRuleHead returns the first meaningful prelude child and whether it was
// the only one.
func atRuleHead(at *ast.Node) (head *ast.Node, only bool) {
	only = true
	for _, child := range at.Children() {
		switch child.Kind {
		case ast.KindWhitespace, ast.KindComment:
			continue
		}
		if head == nil {
			head = child
		} else {
			only = false
		}
	}
	return head, only
}

// meaningful filters whitespace and comments out of a token run.
func meaningful(nodes []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case ast.KindWhitespace, ast.KindComment:
		default:
			out = append(out, n)
		}
	}
	return out
}

// trimSpaces strips leading and trailing whitespace tokens from a run.
func trimSpaces(nodes []*ast.Node) []*ast.Node {
	for len(nodes) > 0 && nodes[0].Kind == ast.KindWhitespace {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Kind == ast.KindWhitespace {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}
