// Package criteria validates search criteria against the jingju vocabulary
// and filters catalog lines by role type, mode, tempo class and line type.
package criteria

import (
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
)

// Axis is one categorical dimension of a catalog line.
type Axis int

const (
	RoleType Axis = iota
	Mode
	TempoClass
	LineType
	numAxes
)

// Axes lists every axis in catalog column order.
var Axes = [numAxes]Axis{RoleType, Mode, TempoClass, LineType}

var axisInfo = [numAxes]struct {
	code  string
	label string
	vocab []string
}{
	RoleType:   {"hd", "hangdang", []string{"laosheng", "dan"}},
	Mode:       {"sq", "shengqiang", []string{"erhuang", "xipi"}},
	TempoClass: {"bs", "banshi", []string{"manban", "sanyan", "zhongsanyan", "kuaisanyan", "yuanban", "erliu", "liushui", "kuaiban"}},
	LineType:   {"ju", "judou", []string{"s", "s1", "s2", "x"}},
}

// aliases are the abbreviations accepted by the lenient policy.
var aliases = [numAxes]map[string]string{
	RoleType: {"ls": "laosheng", "da": "dan"},
	Mode:     {"eh": "erhuang", "xp": "xipi"},
	TempoClass: {
		"mb": "manban", "sy": "sanyan", "zsy": "zhongsanyan", "ksy": "kuaisanyan",
		"yb": "yuanban", "el": "erliu", "lsh": "liushui", "kb": "kuaiban",
	},
	LineType: {},
}

// Code is the short name used in flags and logs ("hd", "sq", "bs", "ju").
func (a Axis) Code() string { return axisInfo[a].code }

// Label is the jingju term for the axis.
func (a Axis) Label() string { return axisInfo[a].label }

func (a Axis) String() string { return axisInfo[a].label }

// Vocabulary returns a copy of the recognised values of the axis.
func (a Axis) Vocabulary() []string {
	return append([]string(nil), axisInfo[a].vocab...)
}

func (a Axis) valid(v string) bool {
	for _, w := range axisInfo[a].vocab {
		if w == v {
			return true
		}
	}
	return false
}

// correct maps a value to a vocabulary entry by case folding and alias
// lookup.
func (a Axis) correct(v string) (string, bool) {
	folded := strings.ToLower(strings.TrimSpace(v))
	if a.valid(folded) {
		return folded, true
	}
	if full, ok := aliases[a][folded]; ok {
		return full, true
	}
	return "", false
}

// Of returns the record's value on this axis.
func (a Axis) Of(rec catalog.Record) string {
	switch a {
	case RoleType:
		return rec.RoleType
	case Mode:
		return rec.Mode
	case TempoClass:
		return rec.TempoClass
	default:
		return rec.LineType
	}
}
