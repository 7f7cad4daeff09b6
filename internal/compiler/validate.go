package compiler

import (
	"strings"

	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/validator"
)

// runValidation applies validation programs to every rule: the program
// installed with SetValidating plus any @validate at-rules a rule body
// carries. Failures are warnings unless fatal validation is on. @validate
// markers are consumed here whether or not their program loads.
func (c *Compiler) runValidation(list *ast.Node) {
	if list == nil {
		return
	}
	for i := 0; i < list.Len(); i++ {
		switch item := list.Child(i); item.Kind {
		case ast.KindComponentValue:
			c.validateRule(item)
			// at-rules nested in the body carry their own rules
			c.runValidation(item.LastChild())
		case ast.KindAtKeyword:
			if block := item.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
				c.runValidation(block)
			}
		}
	}
}

func (c *Compiler) validateRule(rule *ast.Node) {
	block := rule.LastChild()
	if block == nil || block.Kind != ast.KindOpenCurly {
		return
	}

	var names []string
	if c.validating != "" {
		names = append(names, c.validating)
	}
	for i := 0; i < block.Len(); {
		item := block.Child(i)
		if item.Kind == ast.KindAtKeyword && item.Value == "validate" {
			if name := atRuleName(item); name != "" {
				names = append(names, name)
			} else {
				c.rep.Error(item.Pos, "@validate requires a program name")
			}
			block.RemoveChild(i)
			continue
		}
		i++
	}
	if len(names) == 0 {
		return
	}

	var decls []validator.Declaration
	for _, item := range block.Children() {
		if item.Kind != ast.KindDeclaration {
			continue
		}
		decls = append(decls, validator.Declaration{
			Name:  item.Value,
			Value: declarationText(item),
			Pos:   item.Pos,
		})
	}

	vars := c.globalVariableText()
	for _, name := range names {
		prog, err := c.reg.Lookup(name)
		if err != nil {
			c.rep.Error(rule.Pos, "cannot load validation program %q: %v", name, err)
			continue
		}
		verdict := c.rt.Run(prog, decls, vars)
		for _, f := range verdict.Failures {
			pos := f.Pos
			if pos.IsZero() {
				pos = rule.Pos
			}
			if c.fatalValidation {
				c.rep.Error(pos, "%s", f.Text)
			} else {
				c.rep.Warning(pos, "%s", f.Text)
			}
		}
	}
}

// declarationText renders a declaration value as source text, leaving out
// any trailing !important marker.
func declarationText(decl *ast.Node) string {
	children := decl.Children()
	for len(children) > 0 && children[len(children)-1].Kind == ast.KindExclamation {
		children = children[:len(children)-1]
	}
	return strings.TrimSpace(ast.TextOf(trimSpaces(children)))
}

// globalVariableText snapshots the global frame as text for programs that
// resolve their enum entries through $variables.
func (c *Compiler) globalVariableText() map[string]string {
	out := make(map[string]string, len(c.scopes[0].vars))
	for name := range c.scopes[0].vars {
		value, _ := c.getVariable(name, true)
		out[name] = strings.TrimSpace(ast.TextOf(value))
	}
	return out
}
