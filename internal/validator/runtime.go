package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mazznoer/csscolorparser"

	"github.com/WebWorksCollection/csspp/internal/position"
)

// Declaration is the compiled view of one declaration a program runs over.
type Declaration struct {
	Name  string
	Value string
	Pos   position.Position
}

// Failure is one rule violation. A zero position means the failure is not
// tied to a single declaration, such as a missing required property.
type Failure struct {
	Pos  position.Position
	Text string
}

// Verdict is the outcome of running a program over a declaration set.
type Verdict struct {
	OK       bool
	Failures []Failure
}

var identPattern = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*$`)

// Runtime runs programs. It caches compiled value patterns and is owned by
// a single compiler instance, like the registry it is used with.
type Runtime struct {
	patterns map[string]*regexp.Regexp
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{patterns: make(map[string]*regexp.Regexp)}
}

// Run checks every declaration against every matching rule of prog. The
// vars map carries the compiler-exposed variables, keyed without their '$',
// used to resolve enum entries written as '$name'.
func (rt *Runtime) Run(prog *Program, decls []Declaration, vars map[string]string) Verdict {
	var failures []Failure
	matched := make([]bool, len(prog.Rules))
	badPattern := make(map[int]bool)

	for _, d := range decls {
		for ri := range prog.Rules {
			rule := &prog.Rules[ri]
			ok, err := doublestar.Match(rule.Property, d.Name)
			if err != nil {
				if !badPattern[ri] {
					badPattern[ri] = true
					failures = append(failures, Failure{
						Pos:  d.Pos,
						Text: fmt.Sprintf("invalid property pattern %q in program %q", rule.Property, prog.Name),
					})
				}
				continue
			}
			if !ok {
				continue
			}
			matched[ri] = true
			failures = append(failures, rt.check(prog, rule, d, vars)...)
		}
	}

	for ri := range prog.Rules {
		rule := &prog.Rules[ri]
		if rule.Required && !matched[ri] {
			failures = append(failures, Failure{
				Text: fmt.Sprintf("required property %q is missing", rule.Property),
			})
		}
	}

	return Verdict{OK: len(failures) == 0, Failures: failures}
}

func (rt *Runtime) check(prog *Program, rule *Rule, d Declaration, vars map[string]string) []Failure {
	var failures []Failure
	fail := func(format string, args ...any) {
		failures = append(failures, Failure{Pos: d.Pos, Text: fmt.Sprintf(format, args...)})
	}

	if rule.Forbid {
		fail("property %q is not allowed", d.Name)
		return failures
	}

	value := strings.TrimSpace(d.Value)
	switch rule.Type {
	case "":
		// no type constraint

	case "color":
		if _, err := csscolorparser.Parse(value); err != nil {
			fail("value %q of %q is not a valid color", value, d.Name)
		}

	case "integer":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			fail("value %q of %q is not an integer", value, d.Name)
		} else {
			failures = append(failures, rangeFailures(rule, float64(n), d)...)
		}

	case "number":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fail("value %q of %q is not a number", value, d.Name)
		} else {
			failures = append(failures, rangeFailures(rule, f, d)...)
		}

	case "identifier":
		if !identPattern.MatchString(value) {
			fail("value %q of %q is not an identifier", value, d.Name)
		}

	case "string":
		if len(value) < 2 || (value[0] != '"' && value[0] != '\'') {
			fail("value of %q is not a quoted string", d.Name)
		}

	default:
		fail("unknown type %q in program %q", rule.Type, prog.Name)
	}

	if len(rule.Enum) > 0 {
		allowed := make([]string, len(rule.Enum))
		found := false
		for i, entry := range rule.Enum {
			if name, isVar := strings.CutPrefix(entry, "$"); isVar {
				entry = vars[name]
			}
			allowed[i] = entry
			if strings.EqualFold(value, entry) {
				found = true
			}
		}
		if !found {
			fail("value %q of %q is not one of: %s", value, d.Name, strings.Join(allowed, ", "))
		}
	}

	if rule.Pattern != "" {
		re, err := rt.pattern(rule.Pattern)
		if err != nil {
			fail("invalid pattern %q in program %q", rule.Pattern, prog.Name)
		} else if !re.MatchString(value) {
			fail("value %q of %q does not match %q", value, d.Name, rule.Pattern)
		}
	}

	return failures
}

func rangeFailures(rule *Rule, v float64, d Declaration) []Failure {
	var failures []Failure
	if rule.Min != nil && v < *rule.Min {
		failures = append(failures, Failure{
			Pos:  d.Pos,
			Text: fmt.Sprintf("value %v of %q is below the minimum %v", v, d.Name, *rule.Min),
		})
	}
	if rule.Max != nil && v > *rule.Max {
		failures = append(failures, Failure{
			Pos:  d.Pos,
			Text: fmt.Sprintf("value %v of %q is above the maximum %v", v, d.Name, *rule.Max),
		})
	}
	return failures
}

// patterns are anchored so a rule matches whole values only.
func (rt *Runtime) pattern(p string) (*regexp.Regexp, error) {
	if re, ok := rt.patterns[p]; ok {
		return re, nil
	}
	re, err := regexp.Compile("^(?:" + p + ")$")
	if err != nil {
		return nil, err
	}
	rt.patterns[p] = re
	return re, nil
}
