package criteria

import (
	"fmt"
	"strings"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// Criteria holds the allowed values of each axis.
type Criteria struct {
	RoleTypes    []string
	Modes        []string
	TempoClasses []string
	LineTypes    []string
}

// All returns criteria allowing the whole vocabulary.
func All() Criteria {
	return Criteria{
		RoleTypes:    RoleType.Vocabulary(),
		Modes:        Mode.Vocabulary(),
		TempoClasses: TempoClass.Vocabulary(),
		LineTypes:    LineType.Vocabulary(),
	}
}

// WithDefaults fills every empty axis with its full vocabulary.
func (c Criteria) WithDefaults() Criteria {
	out := c
	for _, a := range Axes {
		if len(out.Values(a)) == 0 {
			out.set(a, a.Vocabulary())
		}
	}
	return out
}

func (c Criteria) Values(a Axis) []string {
	switch a {
	case RoleType:
		return c.RoleTypes
	case Mode:
		return c.Modes
	case TempoClass:
		return c.TempoClasses
	default:
		return c.LineTypes
	}
}

func (c *Criteria) set(a Axis, values []string) {
	switch a {
	case RoleType:
		c.RoleTypes = values
	case Mode:
		c.Modes = values
	case TempoClass:
		c.TempoClasses = values
	default:
		c.LineTypes = values
	}
}

func (c Criteria) String() string {
	parts := make([]string, 0, numAxes)
	for _, a := range Axes {
		parts = append(parts, a.Code()+"="+strings.Join(c.Values(a), ","))
	}
	return strings.Join(parts, " ")
}

// Policy decides what happens to a value outside the vocabulary.
type Policy int

const (
	// Strict rejects the criteria on the first bad value of any axis.
	Strict Policy = iota
	// Lenient corrects case and known abbreviations, skips what it cannot
	// correct, and fails only when an axis is left empty.
	Lenient
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, apperrors.Newf(apperrors.ErrInvalidInput, "validation policy %q, want strict or lenient", s)
}

type IssueKind int

const (
	Corrected IssueKind = iota
	Skipped
	NotFound
	Warning
)

// Issue is an axis-level problem reported once per run.
type Issue struct {
	Kind        IssueKind
	Axis        Axis
	Value       string
	Replacement string
	Message     string
}

func (i Issue) String() string {
	switch i.Kind {
	case Corrected:
		return fmt.Sprintf("%s %q read as %q", i.Axis.Label(), i.Value, i.Replacement)
	case Skipped:
		return fmt.Sprintf("%s %q is not valid and was skipped", i.Axis.Label(), i.Value)
	case NotFound:
		return fmt.Sprintf("no results found for %s %q", i.Axis.Label(), i.Value)
	default:
		return i.Message
	}
}

// Validate checks every value against its axis vocabulary. Duplicates are
// dropped keeping the first occurrence.
func Validate(c Criteria, p Policy) (Criteria, []Issue, error) {
	var (
		out    Criteria
		issues []Issue
		bad    []string
	)
	for _, a := range Axes {
		values := c.Values(a)
		if len(values) == 0 {
			return Criteria{}, issues, apperrors.Newf(apperrors.ErrInvalidCriteriaValue, "no %s given", a.Label())
		}
		kept := make([]string, 0, len(values))
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			if a.valid(v) {
				if !seen[v] {
					seen[v] = true
					kept = append(kept, v)
				}
				continue
			}
			if p == Strict {
				bad = append(bad, fmt.Sprintf("%q is not a valid %s (valid: %s)", v, a.Label(), joinAnd(a.Vocabulary())))
				continue
			}
			if fixed, ok := a.correct(v); ok {
				issues = append(issues, Issue{Kind: Corrected, Axis: a, Value: v, Replacement: fixed})
				if !seen[fixed] {
					seen[fixed] = true
					kept = append(kept, fixed)
				}
				continue
			}
			issues = append(issues, Issue{Kind: Skipped, Axis: a, Value: v})
		}
		if p == Lenient && len(kept) == 0 {
			return Criteria{}, issues, apperrors.Newf(apperrors.ErrInvalidCriteriaValue, "after skipping incorrect values no input for %s is left", a.Label())
		}
		out.set(a, kept)
	}
	if len(bad) > 0 {
		return Criteria{}, issues, apperrors.New(apperrors.ErrInvalidCriteriaValue, strings.Join(bad, "; "))
	}
	return out, issues, nil
}

// joinAnd renders ["a","b","c"] as "a, b and c".
func joinAnd(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	return strings.Join(values[:len(values)-1], ", ") + " and " + values[len(values)-1]
}
