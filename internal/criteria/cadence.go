package criteria

import (
	"fmt"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// CadencePlan lists the line types whose cadences are counted for a mode,
// with the column titles used in reports.
type CadencePlan struct {
	Mode      string
	LineTypes []string
	Titles    []string
}

var cadencePlans = map[string]CadencePlan{
	"xipi": {
		Mode:      "xipi",
		LineTypes: []string{"s", "x"},
		Titles:    []string{"Op. line", "Cl. line"},
	},
	"erhuang": {
		Mode:      "erhuang",
		LineTypes: []string{"s1", "s2", "x"},
		Titles:    []string{"Op. l. 1", "Op. l. 2", "Cl. l."},
	},
}

// ValidateCadence checks criteria for cadential-note counting: exactly one
// mode, from which the line types follow. Any line types in c are ignored.
// More than one role type is allowed but reported as a warning.
func ValidateCadence(c Criteria, p Policy) (Criteria, CadencePlan, []Issue, error) {
	if len(c.Modes) != 1 {
		return Criteria{}, CadencePlan{}, nil, apperrors.Newf(apperrors.ErrInvalidCriteriaValue,
			"cadential notes take exactly one shengqiang, either xipi or erhuang; got %d", len(c.Modes))
	}
	mode := c.Modes[0]
	if p == Lenient {
		if fixed, ok := Mode.correct(mode); ok {
			mode = fixed
		}
	}
	plan, ok := cadencePlans[mode]
	if !ok {
		return Criteria{}, CadencePlan{}, nil, apperrors.Newf(apperrors.ErrInvalidCriteriaValue,
			"cadential notes take either xipi or erhuang, got %q", c.Modes[0])
	}
	in := Criteria{
		RoleTypes:    c.RoleTypes,
		Modes:        []string{plan.Mode},
		TempoClasses: c.TempoClasses,
		LineTypes:    plan.LineTypes,
	}.WithDefaults()
	out, issues, err := Validate(in, p)
	if err != nil {
		return Criteria{}, CadencePlan{}, issues, err
	}
	if n := len(out.RoleTypes); n > 1 {
		issues = append(issues, Issue{
			Kind:    Warning,
			Axis:    RoleType,
			Message: fmt.Sprintf("%d hangdang given; cadential notes may not be musically meaningful for more than one", n),
		})
	}
	return out, plan, issues, nil
}

// ForLineType narrows c to a single line type.
func (c Criteria) ForLineType(lineType string) Criteria {
	out := c
	out.LineTypes = []string{lineType}
	return out
}
