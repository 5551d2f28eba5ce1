// Package batch computes a fixed set of figures per statistic and writes
// their results tables and images into one folder per kind.
package batch

import (
	"fmt"
	"os"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Kind is one of the seven figure kinds.
type Kind string

const (
	PitchHistograms           Kind = "ph"
	SectionPitchHistograms    Kind = "phlj"
	DirectedIntervals         Kind = "ihd"
	UndirectedIntervals       Kind = "ihn"
	CadentialNotes            Kind = "cn"
	MelodicDensityAsNotes     Kind = "mdn"
	MelodicDensityAsDurations Kind = "mdd"
)

// Kinds lists every kind in run order.
var Kinds = []Kind{
	PitchHistograms, SectionPitchHistograms, DirectedIntervals,
	UndirectedIntervals, CadentialNotes, MelodicDensityAsNotes,
	MelodicDensityAsDurations,
}

var kindFolders = map[Kind]string{
	PitchHistograms:           "pitch_histograms",
	SectionPitchHistograms:    "pitch_histograms_sections",
	DirectedIntervals:         "directed_interval_histograms",
	UndirectedIntervals:       "not_directed_interval_histograms",
	CadentialNotes:            "cadential_notes",
	MelodicDensityAsNotes:     "melodic_density_notes",
	MelodicDensityAsDurations: "melodic_density_duration",
}

// Folder is the directory, under the plots root, holding the kind's files.
func (k Kind) Folder() string { return kindFolders[k] }

// ResultsFile is the name of the kind's results table.
func (k Kind) ResultsFile() string { return string(k) + "_results.csv" }

// ParseKinds checks names against the known kinds, keeping run order. No
// names selects every kind.
func ParseKinds(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return Kinds, nil
	}
	want := make(map[Kind]bool, len(names))
	for _, n := range names {
		k := Kind(strings.TrimSpace(n))
		if _, ok := kindFolders[k]; !ok {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "figure kind %q, want one of %s", n, kindList())
		}
		want[k] = true
	}
	out := make([]Kind, 0, len(want))
	for _, k := range Kinds {
		if want[k] {
			out = append(out, k)
		}
	}
	return out, nil
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Figure is one entry of a plan: the image file name and the criteria of
// the lines it covers.
type Figure struct {
	File         string   `yaml:"file"`
	RoleTypes    []string `yaml:"hd"`
	Modes        []string `yaml:"sq"`
	TempoClasses []string `yaml:"bs"`
	LineTypes    []string `yaml:"ju"`
}

// Criteria returns the figure's criteria with empty axes allowing
// everything.
func (f Figure) Criteria() criteria.Criteria {
	return criteria.Criteria{
		RoleTypes:    f.RoleTypes,
		Modes:        f.Modes,
		TempoClasses: f.TempoClasses,
		LineTypes:    f.LineTypes,
	}.WithDefaults()
}

// Plan lists the figures of each kind.
type Plan map[Kind][]Figure

// LoadPlan reads a YAML plan. Kinds it lists replace the default figures
// of that kind; the others keep their defaults.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file %s: %w", path, err)
	}
	var raw map[string][]Figure
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	plan := DefaultPlan()
	for name, figs := range raw {
		k := Kind(name)
		if _, ok := kindFolders[k]; !ok {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "plan file %s: unknown figure kind %q", path, name)
		}
		for i, f := range figs {
			if f.File == "" {
				return nil, apperrors.Newf(apperrors.ErrInvalidInput, "plan file %s: %s figure %d has no file name", path, name, i+1)
			}
		}
		plan[k] = figs
	}
	return plan, nil
}

type group struct {
	code   string
	values []string
}

var (
	laosheng = group{"ls", []string{"laosheng"}}
	dan      = group{"da", []string{"dan"}}
	bothRole = []string{"laosheng", "dan"}
	erhuang  = group{"eh", []string{"erhuang"}}
	xipi     = group{"xp", []string{"xipi"}}
	bothMode = []string{"erhuang", "xipi"}

	yuanban = group{"yb", []string{"yuanban", "erliu"}}
	manban  = group{"mb", []string{"manban", "sanyan", "zhongsanyan", "kuaisanyan"}}
	kuaiban = group{"kb", []string{"kuaiban", "liushui"}}
	banshi  = []string{"yuanban", "erliu", "manban", "sanyan", "zhongsanyan", "kuaisanyan", "kuaiban", "liushui"}
	judou   = []string{"s", "s1", "s2", "x"}

	tempoGroups = map[string][]group{
		"eh": {manban, yuanban},
		"xp": {manban, yuanban, kuaiban},
	}
	lineGroups = map[string][]group{
		"eh": {{"s1", []string{"s1"}}, {"s2", []string{"s2"}}, {"x", []string{"x"}}},
		"xp": {{"s", []string{"s"}}, {"x", []string{"x"}}},
	}
)

// DefaultPlan returns the published figure set.
func DefaultPlan() Plan {
	plan := make(Plan, len(Kinds))
	for _, k := range Kinds {
		plan[k] = defaultFigures(k)
	}
	return plan
}

func defaultFigures(k Kind) []Figure {
	var (
		overview  = k != CadentialNotes && k != MelodicDensityAsNotes && k != MelodicDensityAsDurations
		perMode   = k != MelodicDensityAsNotes && k != MelodicDensityAsDurations
		perLine   = k == PitchHistograms || k == SectionPitchHistograms || k == MelodicDensityAsNotes || k == MelodicDensityAsDurations
		lineTypes = judou
	)
	if k == CadentialNotes {
		lineTypes = nil
	}
	var figs []Figure
	add := func(name string, hd, sq, bs, ju []string) {
		figs = append(figs, Figure{File: name, RoleTypes: hd, Modes: sq, TempoClasses: bs, LineTypes: ju})
	}
	prefix := string(k)
	if overview {
		add(prefix+"-ls.png", laosheng.values, bothMode, banshi, lineTypes)
		add(prefix+"-da.png", dan.values, bothMode, banshi, lineTypes)
		add(prefix+"-eh.png", bothRole, erhuang.values, banshi, lineTypes)
		// published without the extension dot
		add(prefix+"-xp-png", bothRole, xipi.values, banshi, lineTypes)
	}
	for _, role := range []group{laosheng, dan} {
		for _, mode := range []group{erhuang, xipi} {
			base := prefix + "-" + role.code + "-" + mode.code
			if perMode {
				add(base+".png", role.values, mode.values, banshi, lineTypes)
			}
			for _, tempo := range tempoGroups[mode.code] {
				name := base + "-" + tempo.code
				add(name+".png", role.values, mode.values, tempo.values, lineTypes)
				if !perLine {
					continue
				}
				for _, lt := range lineGroups[mode.code] {
					add(name+"-"+lt.code+".png", role.values, mode.values, tempo.values, lt.values)
				}
			}
		}
	}
	return figs
}
