// Package compiler rewrites a parsed stylesheet tree into flat CSS. It runs
// a fixed pass order over the tree: at-rule and variable expansion, nested
// rule flattening, selector validation, optional validation programs, empty
// rule removal and finally the output header. All rewriting happens in place
// on the shared ast.Node tree; diagnostics go to the errs.Reporter and the
// compiler itself never stops early, so a single run reports as much as it
// can find.
package compiler

import (
	"time"

	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/collections"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/WebWorksCollection/csspp/internal/resolver"
	"github.com/WebWorksCollection/csspp/internal/validator"
	"github.com/WebWorksCollection/csspp/internal/version"
)

// Compiler holds the state of one compilation: the tree being rewritten, the
// variable scope stack, collected mixins and the search paths used to find
// imports and validation programs. A Compiler is good for one Compile call;
// create a fresh one per input.
type Compiler struct {
	rep *errs.Reporter
	res *resolver.Resolver
	reg *validator.Registry
	rt  *validator.Runtime

	root     *ast.Node
	scopes   []*scope
	parents  []*ast.Node
	mixins   map[string]*mixin
	imported collections.Set[string]

	emptyOnUndef    bool
	validating      string
	fatalValidation bool
}

// New creates a compiler reporting through rep. The date and time variables
// default to the current clock; SetDateTimeVariables overrides them for
// reproducible output.
func New(rep *errs.Reporter) *Compiler {
	res := resolver.New()
	c := &Compiler{
		rep:      rep,
		res:      res,
		reg:      validator.NewRegistry(res),
		rt:       validator.NewRuntime(),
		scopes:   []*scope{newScope()},
		mixins:   map[string]*mixin{},
		imported: collections.NewSet[string](),
	}
	c.SetDateTimeVariables(time.Now())
	return c
}

// SetRoot installs the tree to compile.
func (c *Compiler) SetRoot(root *ast.Node) {
	c.root = root
}

// Root returns the tree, rewritten in place once Compile has run.
func (c *Compiler) Root() *ast.Node {
	return c.root
}

// AddPath appends a directory to the search path used for imports and
// validation programs.
func (c *Compiler) AddPath(dir string) {
	c.res.AddPath(dir)
}

// ClearPaths empties the search path, including the implicit current
// directory.
func (c *Compiler) ClearPaths() {
	c.res.ClearPaths()
}

// FindFile resolves a name against the search paths the way @import does.
func (c *Compiler) FindFile(name string) (string, error) {
	return c.res.Find(name, ".scss", ".css")
}

// SetEmptyOnUndefinedVariable selects how references to unset variables are
// handled: by default they are reported as errors and left in the tree, with
// this enabled they silently expand to nothing.
func (c *Compiler) SetEmptyOnUndefinedVariable(enabled bool) {
	c.emptyOnUndef = enabled
}

// SetValidating installs a validation program to run against every rule.
// The name resolves through the search paths; an empty name disables the
// global program.
func (c *Compiler) SetValidating(name string) {
	c.validating = name
}

// SetFatalValidation promotes validation failures from warnings to errors.
func (c *Compiler) SetFatalValidation(enabled bool) {
	c.fatalValidation = enabled
}

// SetDateTimeVariables binds the $_csspp_* date and time variables in the
// global scope from the given timestamp.
func (c *Compiler) SetDateTimeVariables(now time.Time) {
	set := func(name, text string) {
		s := ast.New(ast.KindString, position.New(""))
		s.Value = text
		c.scopes[0].vars[name] = []*ast.Node{s}
	}
	set("_csspp_year", now.Format("2006"))
	set("_csspp_month", now.Format("01"))
	set("_csspp_day", now.Format("02"))
	set("_csspp_date", now.Format("2006-01-02"))
	set("_csspp_time", now.Format("15:04:05"))
	set("_csspp_datetime", now.Format("2006-01-02 15:04:05"))
}

// Compile rewrites the root tree into flat CSS. Errors are accumulated in
// the reporter; the tree is always left in the best shape the passes could
// make of it. With bare set, the @charset line and the generated-by banner
// are omitted.
func (c *Compiler) Compile(bare bool) {
	if c.root == nil {
		return
	}
	c.expandItems(c.root, false)
	c.flattenList(c.root)
	c.validateSelectors(c.root)
	c.runValidation(c.root)
	c.removeEmptyRules(c.root)
	if !bare {
		c.addHeader()
	}
}

// addHeader prepends the @charset declaration and the version banner. An
// @charset the input already had stays first, as CSS requires.
func (c *Compiler) addHeader() {
	pos := position.New("")
	if c.root.Len() > 0 {
		pos = c.root.Child(0).Pos
	}

	hasCharset := c.root.Len() > 0 &&
		c.root.Child(0).Kind == ast.KindAtKeyword &&
		c.root.Child(0).Value == "charset"
	if !hasCharset {
		at := ast.New(ast.KindAtKeyword, pos)
		at.Value = "charset"
		enc := ast.New(ast.KindString, pos)
		enc.Value = "utf-8"
		at.AddChild(enc)
		c.root.InsertChild(0, at)
	}

	banner := ast.New(ast.KindComment, pos)
	banner.Value = "! Generated by csspp " + version.GetVersion()
	c.root.InsertChild(1, banner)
}

// removeEmptyRules drops every qualified rule whose block ended up with no
// declarations, recursing into conditional at-rule bodies. At-rules
// themselves stay even when emptied; they may carry meaning without content,
// and an at-rule inside a rule body counts as content for its rule.
func (c *Compiler) removeEmptyRules(list *ast.Node) {
	for i := 0; i < list.Len(); {
		switch item := list.Child(i); item.Kind {
		case ast.KindComponentValue:
			if block := item.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
				c.removeEmptyRules(block)
			}
			if contentCount(item.LastChild()) == 0 {
				list.RemoveChild(i)
				continue
			}
		case ast.KindAtKeyword:
			if block := item.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
				c.removeEmptyRules(block)
			}
		}
		i++
	}
}

func contentCount(block *ast.Node) int {
	if block == nil {
		return 0
	}
	n := 0
	for _, child := range block.Children() {
		switch child.Kind {
		case ast.KindDeclaration, ast.KindAtKeyword:
			n++
		}
	}
	return n
}
