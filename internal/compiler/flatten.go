package compiler

import (
	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/position"
)

// flattenList hoists nested rules out of every rule in the list. Each rule's
// nested rules become its following siblings, in the order they were met
// depth first, so declarations keep their cascade position. Conditional
// at-rule bodies flatten within themselves.
func (c *Compiler) flattenList(list *ast.Node) {
	for i := 0; i < list.Len(); i++ {
		switch item := list.Child(i); item.Kind {
		case ast.KindComponentValue:
			lifted := c.flattenRule(item)
			for k, r := range lifted {
				list.InsertChild(i+1+k, r)
			}
			i += len(lifted)
		case ast.KindAtKeyword:
			if block := item.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
				c.flattenList(block)
			}
		}
	}
}

// flattenRule rewrites one rule in place: property groups expand into
// prefixed declarations, nested rules are removed and returned as
// stand-alone rules with combined selectors, themselves already flattened.
func (c *Compiler) flattenRule(rule *ast.Node) []*ast.Node {
	c.pushParent(rule)
	defer c.popParent()

	block := rule.LastChild()
	if block == nil || block.Kind != ast.KindOpenCurly {
		return nil
	}

	var lifted []*ast.Node
	for j := 0; j < block.Len(); {
		item := block.Child(j)
		if item.Kind == ast.KindAtKeyword {
			if b := item.LastChild(); b != nil && b.Kind == ast.KindOpenCurly {
				c.flattenList(b)
			}
			j++
			continue
		}
		if item.Kind != ast.KindDeclaration {
			j++
			continue
		}
		switch {
		case isNestedRule(item):
			block.RemoveChild(j)
			child := c.liftNestedRule(item)
			lifted = append(lifted, child)
			lifted = append(lifted, c.flattenRule(child)...)
		case isPropertyGroup(item):
			// splice and rescan: a group can hide a nested rule
			block.Splice(j, flattenGroup(item))
		default:
			j++
		}
	}
	return lifted
}

// liftNestedRule turns a nested-rule declaration into a stand-alone rule,
// combining its selector against the enclosing rule's.
func (c *Compiler) liftNestedRule(decl *ast.Node) *ast.Node {
	block := decl.LastChild()
	inner := decl.Children()[:decl.Len()-1]
	if decl.Integer != 0 {
		// the b:hover form; restore the name and colon the parser consumed
		name := ast.New(ast.KindIdentifier, decl.Pos)
		name.Value = decl.Value
		colon := ast.New(ast.KindColon, decl.Pos)
		inner = append([]*ast.Node{name, colon}, inner...)
	}

	var outer []*ast.Node
	if parent := c.currentParent(); parent != nil && parent.Len() > 1 {
		outer = parent.Children()[:parent.Len()-1]
	}

	rule := ast.New(ast.KindComponentValue, decl.Pos)
	for _, tk := range combineSelectors(outer, inner) {
		rule.AddChild(tk)
	}
	rule.AddChild(block)
	return rule
}

// combineSelectors builds the flattened selector list. Every inner selector
// combines with every outer selector, inner first: nesting b, c under a, d
// yields "a b, d b, a c, d c". Inner selectors holding a parent reference
// get the outer selector substituted for each '&'; the rest become
// descendants of the outer selector.
func combineSelectors(outer, inner []*ast.Node) []*ast.Node {
	outerGroups := splitSelectors(outer)
	innerGroups := splitSelectors(inner)
	if len(outerGroups) == 0 {
		outerGroups = [][]*ast.Node{nil}
	}

	var out []*ast.Node
	for _, in := range innerGroups {
		for _, o := range outerGroups {
			if len(out) > 0 {
				pos := position.New("")
				if len(in) > 0 {
					pos = in[0].Pos
				}
				out = append(out, ast.New(ast.KindComma, pos), ast.New(ast.KindWhitespace, pos))
			}
			out = append(out, combineOne(o, in)...)
		}
	}
	return out
}

func combineOne(outer, inner []*ast.Node) []*ast.Node {
	hasRef := false
	for _, tk := range inner {
		if tk.Kind == ast.KindReference {
			hasRef = true
			break
		}
	}

	var out []*ast.Node
	if hasRef {
		for _, tk := range inner {
			if tk.Kind == ast.KindReference {
				out = append(out, cloneAll(outer)...)
				continue
			}
			out = append(out, tk.Clone())
		}
		return out
	}
	out = append(out, cloneAll(outer)...)
	if len(out) > 0 && len(inner) > 0 {
		out = append(out, ast.New(ast.KindWhitespace, inner[0].Pos))
	}
	return append(out, cloneAll(inner)...)
}

// splitSelectors splits a selector run on commas, trimming the whitespace
// around each selector. Empty selectors are kept; validation reports them.
func splitSelectors(tokens []*ast.Node) [][]*ast.Node {
	var groups [][]*ast.Node
	var cur []*ast.Node
	for _, tk := range tokens {
		if tk.Kind == ast.KindComma {
			groups = append(groups, trimSpaces(cur))
			cur = nil
			continue
		}
		cur = append(cur, tk)
	}
	if len(cur) > 0 || len(groups) > 0 {
		groups = append(groups, trimSpaces(cur))
	}
	return groups
}

func cloneAll(nodes []*ast.Node) []*ast.Node {
	out := make([]*ast.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// flattenGroup expands a property group into dash-joined declarations:
// "border: { width: 1px }" becomes "border-width: 1px". Groups nest, each
// level adding one more prefix.
func flattenGroup(group *ast.Node) []*ast.Node {
	var out []*ast.Node
	appendPrefixed(&out, group.Value, group.Child(0))
	return out
}

func appendPrefixed(out *[]*ast.Node, prefix string, block *ast.Node) {
	for _, item := range block.Children() {
		switch {
		case item.Kind != ast.KindDeclaration:
			*out = append(*out, item)
		case isPropertyGroup(item):
			appendPrefixed(out, prefix+"-"+item.Value, item.Child(0))
		case isNestedRule(item):
			*out = append(*out, item)
		default:
			item.Value = prefix + "-" + item.Value
			*out = append(*out, item)
		}
	}
}
