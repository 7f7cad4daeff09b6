package compiler

import "github.com/WebWorksCollection/csspp/internal/ast"

// scope is one variable frame. Values are stored as the token lists the
// variable expands to; they are cloned on every reference so a stored value
// never aliases the output tree.
type scope struct {
	vars map[string][]*ast.Node
}

func newScope() *scope {
	return &scope{vars: make(map[string][]*ast.Node)}
}

// pushScope opens a new innermost frame. Every rule body, mixin expansion
// and property group gets one.
func (c *Compiler) pushScope() {
	c.scopes = append(c.scopes, newScope())
}

// popScope closes the innermost frame. The global frame is never popped;
// going below it is a programming error.
func (c *Compiler) popScope() {
	if len(c.scopes) <= 1 {
		panic("compiler: scope stack underflow")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// setVariable binds name in the innermost frame, or in the global frame for
// a !global assignment.
func (c *Compiler) setVariable(name string, value []*ast.Node, global bool) {
	frame := c.scopes[len(c.scopes)-1]
	if global {
		frame = c.scopes[0]
	}
	frame.vars[name] = value
}

// getVariable resolves name against the frames, innermost first. With
// globalOnly only the global frame is consulted.
func (c *Compiler) getVariable(name string, globalOnly bool) ([]*ast.Node, bool) {
	if globalOnly {
		v, ok := c.scopes[0].vars[name]
		return v, ok
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// pushParent records the rule whose children are being rewritten. The
// flattening pass keeps the stack balanced with deferred pops.
func (c *Compiler) pushParent(rule *ast.Node) {
	c.parents = append(c.parents, rule)
}

func (c *Compiler) popParent() {
	if len(c.parents) == 0 {
		panic("compiler: parent stack underflow")
	}
	c.parents = c.parents[:len(c.parents)-1]
}

// currentParent returns the innermost enclosing rule, or nil at the top
// level.
func (c *Compiler) currentParent() *ast.Node {
	if len(c.parents) == 0 {
		return nil
	}
	return c.parents[len(c.parents)-1]
}
