package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/collections"
	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/WebWorksCollection/csspp/internal/resolver"
)

// validateSelectors checks every rule's selector list once flattening has
// produced the final selectors. A malformed selector drops its rule with
// one reported error; sibling rules are untouched.
func (c *Compiler) validateSelectors(list *ast.Node) {
	if list == nil {
		return
	}
	c.walkSelectors(list, c.selectorPseudos(list.Pos))
}

func (c *Compiler) walkSelectors(list *ast.Node, names *pseudoNames) {
	for i := 0; i < list.Len(); {
		switch item := list.Child(i); item.Kind {
		case ast.KindComponentValue:
			if !c.validSelector(item, names) {
				list.RemoveChild(i)
				continue
			}
			// at-rules nested in the body carry their own rules
			if block := item.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
				c.walkSelectors(block, names)
			}
		case ast.KindAtKeyword:
			// keyframe preludes such as "0%" and "from" are not selectors
			if isKeyframes(item.Value) {
				break
			}
			if block := item.LastChild(); block != nil && block.Kind == ast.KindOpenCurly {
				c.walkSelectors(block, names)
			}
		}
		i++
	}
}

func isKeyframes(name string) bool {
	return name == "keyframes" || strings.HasSuffix(name, "-keyframes")
}

func (c *Compiler) validSelector(rule *ast.Node, names *pseudoNames) bool {
	if rule.Len() < 2 {
		c.rep.Error(rule.Pos, "invalid selector, a rule needs at least one selector")
		return false
	}
	for _, group := range splitSelectors(rule.Children()[:rule.Len()-1]) {
		if pos, detail := checkSelector(group, rule.Pos, names); detail != "" {
			c.rep.Error(pos, "invalid selector, %s", detail)
			return false
		}
	}
	return true
}

// checkSelector validates one comma-free selector. On failure it returns
// the position of the offending token and a description; on success the
// description is empty.
func checkSelector(tokens []*ast.Node, fallback position.Position, names *pseudoNames) (position.Position, string) {
	s := &selectorCheck{toks: tokens, pos: fallback, names: names}
	s.run()
	return s.pos, s.detail
}

type selectorCheck struct {
	toks   []*ast.Node
	i      int
	bad    bool
	pos    position.Position
	detail string
	names  *pseudoNames
}

func (s *selectorCheck) fail(pos position.Position, format string, args ...any) {
	if !s.bad {
		s.bad = true
		s.pos = pos
		s.detail = fmt.Sprintf(format, args...)
	}
}

func (s *selectorCheck) peek() *ast.Node {
	if s.i < len(s.toks) {
		return s.toks[s.i]
	}
	return nil
}

func (s *selectorCheck) skipSpace() bool {
	skipped := false
	for t := s.peek(); t != nil && t.Kind == ast.KindWhitespace; t = s.peek() {
		skipped = true
		s.i++
	}
	return skipped
}

// run consumes compound selectors separated by combinators until the token
// run ends or a problem is found.
func (s *selectorCheck) run() {
	if len(s.toks) == 0 {
		s.fail(s.pos, "a selector cannot be empty")
		return
	}
	s.compound()
	for !s.bad {
		spaced := s.skipSpace()
		t := s.peek()
		if t == nil {
			return
		}
		switch t.Kind {
		case ast.KindGreaterThan, ast.KindPlus, ast.KindPrecede:
			s.i++
			s.skipSpace()
			if s.peek() == nil {
				s.fail(t.Pos, "a selector cannot end with a combinator")
				return
			}
			s.compound()
		default:
			if !spaced {
				s.fail(t.Pos, "unexpected %s in a selector", t.Kind)
				return
			}
			s.compound()
		}
	}
}

// compound consumes one compound selector: an optional type or universal
// followed by class, id, attribute and pseudo qualifiers.
func (s *selectorCheck) compound() {
	t := s.peek()
	if t == nil {
		s.fail(s.pos, "a selector cannot be empty")
		return
	}
	start := s.i
	switch t.Kind {
	case ast.KindIdentifier, ast.KindMultiply:
		s.i++
	}
loop:
	for !s.bad {
		t = s.peek()
		if t == nil {
			break
		}
		switch t.Kind {
		case ast.KindPeriod:
			s.i++
			if u := s.peek(); u == nil || u.Kind != ast.KindIdentifier {
				s.fail(t.Pos, "a class selector needs an identifier after the period")
				return
			}
			s.i++
		case ast.KindHash:
			s.i++
		case ast.KindColon:
			s.i++
			s.pseudo(t)
		case ast.KindOpenSquare:
			s.attribute(t)
			s.i++
		case ast.KindReference:
			s.fail(t.Pos, "the parent reference '&' can only be used inside a rule")
			return
		default:
			break loop
		}
	}
	if s.i == start && !s.bad {
		s.fail(s.toks[start].Pos, "unexpected %s in a selector", s.toks[start].Kind)
	}
}

// pseudo consumes what follows a colon: a pseudo-class name, a functional
// pseudo-class such as :not(...), or a ::pseudo-element.
func (s *selectorCheck) pseudo(colon *ast.Node) {
	t := s.peek()
	if t != nil && t.Kind == ast.KindColon {
		s.i++
		u := s.peek()
		if u == nil || u.Kind != ast.KindIdentifier {
			s.fail(colon.Pos, "a pseudo-element needs a name after '::'")
			return
		}
		if !s.names.knownElement(u.Value) {
			s.fail(u.Pos, "'::%s' is not a known pseudo-element", u.Value)
			return
		}
		s.i++
		return
	}
	switch {
	case t == nil:
		s.fail(colon.Pos, "a pseudo-class needs a name after ':'")
	case t.Kind == ast.KindIdentifier, t.Kind == ast.KindFunction:
		if !s.names.knownClass(t.Value) {
			s.fail(t.Pos, "':%s' is not a known pseudo-class", t.Value)
			return
		}
		s.i++
	default:
		s.fail(colon.Pos, "a pseudo-class needs a name after ':'")
	}
}

// attribute validates an attribute selector block: a name, optionally
// followed by a match operator and a single value. The parser marks a
// bracket whose closer was missing; those are always rejected.
func (s *selectorCheck) attribute(sq *ast.Node) {
	if sq.Integer != 0 {
		s.fail(sq.Pos, "the attribute selector is missing its closing ']'")
		return
	}
	inner := meaningful(sq.Children())
	if len(inner) == 0 {
		s.fail(sq.Pos, "an attribute selector cannot be empty")
		return
	}
	if inner[0].Kind != ast.KindIdentifier {
		s.fail(inner[0].Pos, "an attribute selector starts with an attribute name")
		return
	}
	if len(inner) == 1 {
		return
	}
	switch inner[1].Kind {
	case ast.KindEqual, ast.KindIncludes, ast.KindDashMatch,
		ast.KindPrefixMatch, ast.KindSuffixMatch, ast.KindSubstringMatch:
	default:
		s.fail(inner[1].Pos, "an attribute selector needs a match operator before its value")
		return
	}
	if len(inner) != 3 {
		s.fail(sq.Pos, "an attribute selector needs exactly one value after its operator")
		return
	}
	switch inner[2].Kind {
	case ast.KindIdentifier, ast.KindString, ast.KindInteger, ast.KindDecimal:
	default:
		s.fail(inner[2].Pos, "an attribute selector value must be an identifier, a string or a number")
	}
}

// pseudoNames holds the pseudo-class and pseudo-element names a selector
// may use. Vendor-prefixed names always pass.
type pseudoNames struct {
	classes  collections.Set[string]
	elements collections.Set[string]
}

func (p *pseudoNames) knownClass(name string) bool {
	return strings.HasPrefix(name, "-") || p.classes.Has(name)
}

func (p *pseudoNames) knownElement(name string) bool {
	return strings.HasPrefix(name, "-") || p.elements.Has(name)
}

// selectorPseudos builds the accepted name sets: the CSS baseline plus
// whatever a resolvable "pseudo-classes" program contributes. Entries of
// a rule with property "pseudo-element" extend the element set, all
// others the class set.
func (c *Compiler) selectorPseudos(pos position.Position) *pseudoNames {
	names := &pseudoNames{
		classes:  collections.NewSet(basePseudoClasses...),
		elements: collections.NewSet(basePseudoElements...),
	}
	prog, err := c.reg.Lookup("pseudo-classes")
	if err != nil {
		if !errors.Is(err, resolver.ErrNotFound) {
			c.rep.Warning(pos, "cannot load validation program %q: %v", "pseudo-classes", err)
		}
		return names
	}
	for _, rule := range prog.Rules {
		if rule.Property == "pseudo-element" {
			names.elements.Add(rule.Enum...)
			continue
		}
		names.classes.Add(rule.Enum...)
	}
	return names
}

// basePseudoClasses also carries the four CSS2 pseudo-elements, which are
// still legal in their single-colon form.
var basePseudoClasses = []string{
	"active", "any-link", "checked", "default", "defined", "dir",
	"disabled", "empty", "enabled", "first", "first-child",
	"first-of-type", "focus", "focus-visible", "focus-within",
	"fullscreen", "has", "host", "hover", "in-range", "indeterminate",
	"invalid", "is", "lang", "last-child", "last-of-type", "left",
	"link", "not", "nth-child", "nth-last-child", "nth-last-of-type",
	"nth-of-type", "only-child", "only-of-type", "optional",
	"out-of-range", "placeholder-shown", "read-only", "read-write",
	"required", "right", "root", "scope", "target", "valid", "visited",
	"where",
	"after", "before", "first-letter", "first-line",
}

var basePseudoElements = []string{
	"after", "backdrop", "before", "cue", "file-selector-button",
	"first-letter", "first-line", "grammar-error", "marker", "part",
	"placeholder", "selection", "slotted", "spelling-error",
}
