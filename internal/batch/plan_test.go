package batch

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(figs []Figure) []string {
	out := make([]string, len(figs))
	for i, f := range figs {
		out[i] = f.File
	}
	return out
}

func TestDefaultPlanSizes(t *testing.T) {
	plan := DefaultPlan()
	tests := map[Kind]int{
		PitchHistograms:           42,
		SectionPitchHistograms:    42,
		DirectedIntervals:         18,
		UndirectedIntervals:       18,
		CadentialNotes:            14,
		MelodicDensityAsNotes:     34,
		MelodicDensityAsDurations: 34,
	}
	for k, want := range tests {
		assert.Len(t, plan[k], want, string(k))
	}
}

func TestDefaultPlanOrder(t *testing.T) {
	plan := DefaultPlan()
	ph := files(plan[PitchHistograms])
	assert.Equal(t, []string{
		"ph-ls.png", "ph-da.png", "ph-eh.png", "ph-xp-png",
		"ph-ls-eh.png", "ph-ls-eh-mb.png", "ph-ls-eh-mb-s1.png", "ph-ls-eh-mb-s2.png",
		"ph-ls-eh-mb-x.png", "ph-ls-eh-yb.png",
	}, ph[:10])
	assert.Equal(t, "ph-da-xp-kb-x.png", ph[len(ph)-1])

	ihn := files(plan[UndirectedIntervals])
	assert.Equal(t, []string{"ihn-ls-eh.png", "ihn-ls-eh-mb.png", "ihn-ls-eh-yb.png", "ihn-ls-xp.png"}, ihn[4:8])

	cn := plan[CadentialNotes]
	assert.Equal(t, "cn-ls-eh.png", cn[0].File)
	assert.Nil(t, cn[0].LineTypes)
	assert.Equal(t, []string{"kuaiban", "liushui"}, cn[6].TempoClasses)

	mdd := files(plan[MelodicDensityAsDurations])
	assert.Equal(t, "mdd-ls-eh-mb.png", mdd[0])
	assert.Equal(t, "mdd-ls-xp-mb-s.png", mdd[9])
}

func TestFigureCriteria(t *testing.T) {
	f := DefaultPlan()[PitchHistograms][0]
	c := f.Criteria()
	assert.Equal(t, []string{"laosheng"}, c.RoleTypes)
	assert.Equal(t, []string{"erhuang", "xipi"}, c.Modes)
	assert.Len(t, c.TempoClasses, 8)
	assert.Equal(t, []string{"s", "s1", "s2", "x"}, c.LineTypes)
}

func TestParseKinds(t *testing.T) {
	all, err := ParseKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, Kinds, all)

	kinds, err := ParseKinds([]string{"mdd", "ph", " cn"})
	require.NoError(t, err)
	assert.Equal(t, []Kind{PitchHistograms, CadentialNotes, MelodicDensityAsDurations}, kinds)

	_, err = ParseKinds([]string{"pitch"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestKindFiles(t *testing.T) {
	assert.Equal(t, "not_directed_interval_histograms", UndirectedIntervals.Folder())
	assert.Equal(t, "phlj_results.csv", SectionPitchHistograms.ResultsFile())
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	doc := `
ph:
  - file: ph-dan.png
    hd: [dan]
    sq: [xipi]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	plan, err := LoadPlan(path)
	require.NoError(t, err)
	require.Len(t, plan[PitchHistograms], 1)
	assert.Equal(t, Figure{File: "ph-dan.png", RoleTypes: []string{"dan"}, Modes: []string{"xipi"}}, plan[PitchHistograms][0])
	// kinds the file leaves out keep their defaults
	assert.Len(t, plan[CadentialNotes], 14)

	require.NoError(t, os.WriteFile(path, []byte("pitch:\n  - file: a.png\n"), 0o644))
	_, err = LoadPlan(path)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.NoError(t, os.WriteFile(path, []byte("cn:\n  - sq: [xipi]\n"), 0o644))
	_, err = LoadPlan(path)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = LoadPlan(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
