package compiler

import (
	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/position"
)

// Condition grammar, loosest binding first:
//
//	or-expr    := and-expr { "or" and-expr }
//	and-expr   := comparison { "and" comparison }
//	comparison := unary [ ( "=" | "!=" | "<" | "<=" | ">" | ">=" ) unary ]
//	unary      := "not" unary | primary
//	primary    := number | string | identifier | color | "(" or-expr ")"
//
// true, false and null are identifiers with their obvious meanings; any
// other identifier is a text value, truthy when non-empty. Numbers compare
// numerically and carry their dimension into equality, so 3px != 3em.

type exprKind int

const (
	exprBool exprKind = iota
	exprNumber
	exprText
)

type exprValue struct {
	kind exprKind
	b    bool
	num  float64
	dim  string
	str  string
}

func boolValue(b bool) exprValue {
	return exprValue{kind: exprBool, b: b}
}

func truthy(v exprValue) bool {
	switch v.kind {
	case exprBool:
		return v.b
	case exprNumber:
		return v.num != 0
	default:
		return v.str != ""
	}
}

func equalValues(v, w exprValue) bool {
	if v.kind == exprNumber && w.kind == exprNumber {
		return v.num == w.num && v.dim == w.dim
	}
	if v.kind != w.kind {
		return false
	}
	if v.kind == exprBool {
		return v.b == w.b
	}
	return v.str == w.str
}

// evalCondition evaluates @if condition tokens to a boolean. Variables must
// already be expanded. A broken condition reports one error and counts as
// false.
func (c *Compiler) evalCondition(tokens []*ast.Node, pos position.Position) bool {
	e := &exprEval{toks: meaningful(tokens), pos: pos, rep: c.rep}
	if len(e.toks) == 0 {
		e.fail(pos, "a condition was expected")
		return false
	}
	v := e.orExpr()
	if !e.failed && e.i < len(e.toks) {
		e.fail(e.toks[e.i].Pos, "unexpected %s after the condition", e.toks[e.i].Kind)
	}
	if e.failed {
		return false
	}
	return truthy(v)
}

type exprEval struct {
	toks   []*ast.Node
	i      int
	pos    position.Position
	rep    *errs.Reporter
	failed bool
}

func (e *exprEval) fail(pos position.Position, format string, args ...any) {
	if !e.failed {
		e.rep.Error(pos, format, args...)
	}
	e.failed = true
}

func (e *exprEval) peek() *ast.Node {
	if e.i < len(e.toks) {
		return e.toks[e.i]
	}
	return nil
}

func (e *exprEval) nextIsIdent(name string) bool {
	t := e.peek()
	return t != nil && t.Kind == ast.KindIdentifier && t.Value == name
}

func (e *exprEval) orExpr() exprValue {
	v := e.andExpr()
	for e.nextIsIdent("or") {
		e.i++
		w := e.andExpr()
		v = boolValue(truthy(v) || truthy(w))
	}
	return v
}

func (e *exprEval) andExpr() exprValue {
	v := e.comparison()
	for e.nextIsIdent("and") {
		e.i++
		w := e.comparison()
		v = boolValue(truthy(v) && truthy(w))
	}
	return v
}

func (e *exprEval) comparison() exprValue {
	v := e.unary()
	op := e.comparisonOp()
	if op == "" {
		return v
	}
	w := e.unary()
	if e.failed {
		return boolValue(false)
	}
	switch op {
	case "=":
		return boolValue(equalValues(v, w))
	case "!=":
		return boolValue(!equalValues(v, w))
	}
	if v.kind != exprNumber || w.kind != exprNumber {
		e.fail(e.pos, "the '%s' comparison needs numbers on both sides", op)
		return boolValue(false)
	}
	switch op {
	case "<":
		return boolValue(v.num < w.num)
	case "<=":
		return boolValue(v.num <= w.num)
	case ">":
		return boolValue(v.num > w.num)
	default:
		return boolValue(v.num >= w.num)
	}
}

// comparisonOp consumes a comparison operator when one is next. The
// two-character forms arrive from the lexer as adjacent tokens.
func (e *exprEval) comparisonOp() string {
	t := e.peek()
	if t == nil {
		return ""
	}
	next := ast.KindEOF
	if e.i+1 < len(e.toks) {
		next = e.toks[e.i+1].Kind
	}
	switch t.Kind {
	case ast.KindEqual:
		e.i++
		return "="
	case ast.KindExclamation:
		if next == ast.KindEqual {
			e.i += 2
			return "!="
		}
	case ast.KindLessThan:
		if next == ast.KindEqual {
			e.i += 2
			return "<="
		}
		e.i++
		return "<"
	case ast.KindGreaterThan:
		if next == ast.KindEqual {
			e.i += 2
			return ">="
		}
		e.i++
		return ">"
	}
	return ""
}

func (e *exprEval) unary() exprValue {
	if e.nextIsIdent("not") {
		e.i++
		return boolValue(!truthy(e.unary()))
	}
	return e.primary()
}

func (e *exprEval) primary() exprValue {
	t := e.peek()
	if t == nil {
		e.fail(e.pos, "the condition ends where a value was expected")
		return boolValue(false)
	}
	e.i++
	switch t.Kind {
	case ast.KindIdentifier:
		switch t.Value {
		case "true":
			return boolValue(true)
		case "false", "null":
			return boolValue(false)
		}
		return exprValue{kind: exprText, str: t.Value}
	case ast.KindString:
		return exprValue{kind: exprText, str: t.Value}
	case ast.KindInteger:
		return exprValue{kind: exprNumber, num: float64(t.Integer), dim: t.Value}
	case ast.KindDecimal:
		return exprValue{kind: exprNumber, num: t.Decimal, dim: t.Value}
	case ast.KindPercent:
		return exprValue{kind: exprNumber, num: t.Decimal, dim: "%"}
	case ast.KindHash:
		return exprValue{kind: exprText, str: "#" + t.Value}
	case ast.KindOpenParen:
		inner := &exprEval{toks: meaningful(t.Children()), pos: t.Pos, rep: e.rep}
		if len(inner.toks) == 0 {
			e.fail(t.Pos, "empty parentheses in a condition")
			return boolValue(false)
		}
		v := inner.orExpr()
		if inner.failed {
			e.failed = true
			return boolValue(false)
		}
		if inner.i < len(inner.toks) {
			e.fail(inner.toks[inner.i].Pos, "unexpected %s after the condition",
				inner.toks[inner.i].Kind)
			return boolValue(false)
		}
		return v
	case ast.KindVariable:
		// the expansion pass already reported this undefined reference
		e.failed = true
		return boolValue(false)
	default:
		e.fail(t.Pos, "cannot evaluate %s in a condition", t.Kind)
		return boolValue(false)
	}
}
