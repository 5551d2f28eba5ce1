package criteria

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
)

// Granularity selects whole lines or their three sections.
type Granularity int

const (
	Lines Granularity = iota
	Sections
)

func (g Granularity) String() string {
	if g == Sections {
		return "sections"
	}
	return "lines"
}

// PartMaterial holds the matched segments of one voice part. Exactly one of
// Lines and Sections is populated, depending on the granularity.
type PartMaterial struct {
	Index    int
	Lines    []catalog.Span
	Sections [][3]*catalog.Span
}

func (p PartMaterial) Len() int {
	return len(p.Lines) + len(p.Sections)
}

type ScoreMaterial struct {
	Name  string
	Path  string
	Parts []PartMaterial
}

// Segments counts the matched lines of the score over all parts.
func (s ScoreMaterial) Segments() int {
	n := 0
	for _, p := range s.Parts {
		n += p.Len()
	}
	return n
}

// Bundle is the result of filtering the catalog. Only scores with at least
// one matched line are present.
type Bundle struct {
	Criteria    Criteria
	Granularity Granularity
	// Found lists, per axis, the requested values that matched at least
	// one line, in order of first appearance.
	Found      Criteria
	FoundLines int
	Scores     []ScoreMaterial
}

// NotFound returns one NotFound issue per requested value that matched
// nothing.
func (b *Bundle) NotFound() []Issue {
	var issues []Issue
	for _, a := range Axes {
		found := make(map[string]bool)
		for _, v := range b.Found.Values(a) {
			found[v] = true
		}
		for _, v := range b.Criteria.Values(a) {
			if !found[v] {
				issues = append(issues, Issue{Kind: NotFound, Axis: a, Value: v})
			}
		}
	}
	return issues
}

// Summary renders the retrieval message, e.g. "12 lines were retrieved for
// combinations of dan, xipi, erliu, s and x."
func (b *Bundle) Summary() string {
	var found []string
	for _, a := range Axes {
		found = append(found, b.Found.Values(a)...)
	}
	which := "combinations of"
	if len(found) == int(numAxes) {
		which = "the combination of"
	}
	return fmt.Sprintf("%d lines were retrieved for %s %s.", b.FoundLines, which, joinAnd(found))
}

// Filter selects the catalog lines allowed by c. Criteria must already be
// validated. Zero matched lines is an ErrNoMatch error.
func (ix *Index) Filter(ctx context.Context, c Criteria, g Granularity) (*Bundle, error) {
	log := logger.FromContext(ctx).With("component", "criteria-filter")
	b := &Bundle{Criteria: c, Granularity: g}
	seen := [numAxes]map[string]bool{}
	for a := range seen {
		seen[a] = make(map[string]bool)
	}

	lastScore := -1
	matched := ix.Match(c)
	it := matched.Iterator()
	for it.HasNext() {
		id := it.Next()
		rec := ix.records[id]
		si := ix.scoreOf[id]
		if si != lastScore {
			s := ix.scores[si]
			b.Scores = append(b.Scores, ScoreMaterial{Name: s.Name, Path: s.Path})
			lastScore = si
		}
		sm := &b.Scores[len(b.Scores)-1]
		if n := len(sm.Parts); n == 0 || sm.Parts[n-1].Index != rec.Part {
			sm.Parts = append(sm.Parts, PartMaterial{Index: rec.Part})
		}
		pm := &sm.Parts[len(sm.Parts)-1]
		switch g {
		case Sections:
			pm.Sections = append(pm.Sections, rec.Sections)
		default:
			pm.Lines = append(pm.Lines, rec.Line)
		}

		b.FoundLines++
		for _, a := range Axes {
			v := a.Of(rec)
			if !seen[a][v] {
				seen[a][v] = true
				b.Found.set(a, append(b.Found.Values(a), v))
			}
		}
	}

	if b.FoundLines == 0 {
		return nil, apperrors.Newf(apperrors.ErrNoMatch, "no lines found for any combination of %s", c)
	}
	log.Info(b.Summary(), "scores", len(b.Scores), "granularity", g.String())
	return b, nil
}

// Filter builds a one-off index over cat and filters it.
func Filter(ctx context.Context, cat *catalog.Catalog, c Criteria, g Granularity) (*Bundle, error) {
	return NewIndex(cat).Filter(ctx, c, g)
}

// LogIssues reports axis-level issues as a single warning.
func LogIssues(log *slog.Logger, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.String()
	}
	log.Warn("criteria issues", "count", len(issues), "issues", strings.Join(msgs, "; "))
}
