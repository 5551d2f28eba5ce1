package criteria

import (
	"context"
	"strings"
	"testing"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog/catalogtest"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(hd, sq, bs, ju, start, end string) catalogtest.Line {
	return catalogtest.Line{RoleType: hd, Mode: sq, TempoClass: bs, LineType: ju, Start: start, End: end}
}

func withSections(l catalogtest.Line, secs ...[2]string) catalogtest.Line {
	for i, s := range secs {
		l.Sections[i] = s
	}
	return l
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	doc := catalogtest.Join(
		catalogtest.Header("daxp-A.xml"),
		catalogtest.Row("", withSections(line("dan", "xipi", "erliu", "s", "2", "14.75"),
			[2]string{"2", "5.5"}, [2]string{"7", "9.25"}, [2]string{"10", "14.75"})),
		catalogtest.Row("", line("dan", "xipi", "manban", "x", "15", "25.25")),
		catalogtest.Header("lseh-B.xml"),
		catalogtest.Row("", line("laosheng", "erhuang", "manban", "s1", "1", "8")),
		catalogtest.Row("", line("laosheng", "erhuang", "manban", "x", "9", "16")),
		catalogtest.Header("daxp-C.xml"),
		catalogtest.Row("", line("laosheng", "xipi", "kuaiban", "s", "0", "3")),
		catalogtest.PartHeader("2"),
		catalogtest.Row("", withSections(line("dan", "xipi", "erliu", "x", "4", "12"),
			[2]string{"4", "6"}, [2]string{"", ""}, [2]string{"8", "12"})),
	)
	cat, err := catalog.Read(strings.NewReader(doc), "/corpus")
	require.NoError(t, err)
	return cat
}

// TestFilterTwoScoresOneSegmentEach is the dan/xipi/erliu scenario: two
// scores, one segment each.
func TestFilterTwoScoresOneSegmentEach(t *testing.T) {
	cat := testCatalog(t)
	c := All()
	c.RoleTypes = []string{"dan"}
	c.Modes = []string{"xipi"}
	c.TempoClasses = []string{"erliu"}

	b, err := Filter(context.Background(), cat, c, Lines)
	require.NoError(t, err)
	assert.Equal(t, 2, b.FoundLines)
	require.Len(t, b.Scores, 2)
	assert.Equal(t, "daxp-A.xml", b.Scores[0].Name)
	assert.Equal(t, "daxp-C.xml", b.Scores[1].Name)
	assert.Equal(t, 1, b.Scores[0].Segments())
	assert.Equal(t, 1, b.Scores[1].Segments())

	// the second score's match lives in part 2, part 1 is pruned
	require.Len(t, b.Scores[1].Parts, 1)
	assert.Equal(t, 2, b.Scores[1].Parts[0].Index)
	assert.Equal(t, "[4, 12]", b.Scores[1].Parts[0].Lines[0].String())

	assert.Equal(t, []string{"s", "x"}, b.Found.LineTypes)
	assert.Equal(t, "2 lines were retrieved for combinations of dan, xipi, erliu, s and x.", b.Summary())

	var notFound []string
	for _, is := range b.NotFound() {
		notFound = append(notFound, is.Value)
	}
	assert.Equal(t, []string{"s1", "s2"}, notFound)
}

// TestFilterFoundValuesAreSubset checks found ⊆ requested and that every
// not-found value is absent from the matched records.
func TestFilterFoundValuesAreSubset(t *testing.T) {
	cat := testCatalog(t)
	ix := NewIndex(cat)
	cases := []Criteria{
		All(),
		{RoleTypes: []string{"laosheng"}, Modes: []string{"xipi", "erhuang"}, TempoClasses: []string{"manban", "kuaiban"}, LineTypes: []string{"s", "x"}},
		{RoleTypes: []string{"dan"}, Modes: []string{"xipi"}, TempoClasses: []string{"manban"}, LineTypes: []string{"x", "s2"}},
	}
	for _, c := range cases {
		b, err := ix.Filter(context.Background(), c, Lines)
		require.NoError(t, err)
		for _, a := range Axes {
			assert.Subset(t, c.Values(a), b.Found.Values(a))
			assert.LessOrEqual(t, len(b.Found.Values(a)), len(c.Values(a)))
		}
		matched := ix.Match(c)
		for _, is := range b.NotFound() {
			it := matched.Iterator()
			for it.HasNext() {
				assert.NotEqual(t, is.Value, is.Axis.Of(ix.Record(it.Next())))
			}
		}
		total := 0
		for _, s := range b.Scores {
			assert.Positive(t, s.Segments())
			total += s.Segments()
		}
		assert.Equal(t, b.FoundLines, total)
	}
}

// TestFilterSections returns three-slot section lists with gaps as nil.
func TestFilterSections(t *testing.T) {
	cat := testCatalog(t)
	c := All()
	c.RoleTypes = []string{"dan"}
	c.TempoClasses = []string{"erliu"}

	b, err := Filter(context.Background(), cat, c, Sections)
	require.NoError(t, err)
	require.Len(t, b.Scores, 2)

	first := b.Scores[0].Parts[0]
	assert.Empty(t, first.Lines)
	require.Len(t, first.Sections, 1)
	assert.Equal(t, "[7, 9.25]", first.Sections[0][1].String())

	second := b.Scores[1].Parts[0].Sections[0]
	assert.NotNil(t, second[0])
	assert.Nil(t, second[1])
	assert.Equal(t, "[8, 12]", second[2].String())
}

// TestFilterNoMatch is fatal when nothing matches.
func TestFilterNoMatch(t *testing.T) {
	cat := testCatalog(t)
	c := All()
	c.RoleTypes = []string{"laosheng"}
	c.TempoClasses = []string{"erliu"}
	_, err := Filter(context.Background(), cat, c, Lines)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoMatch)
	assert.Equal(t, apperrors.ExitNoMatch, apperrors.ExitCode(err))
}

// TestFilterIdempotent checks that repeated runs give identical bundles.
func TestFilterIdempotent(t *testing.T) {
	ix := NewIndex(testCatalog(t))
	a, err := ix.Filter(context.Background(), All(), Sections)
	require.NoError(t, err)
	b, err := ix.Filter(context.Background(), All(), Sections)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 6, ix.Len())
}

// BenchmarkFilter measures bitmap filtering over a synthetic catalog.
func BenchmarkFilter(b *testing.B) {
	rows := []string{}
	modes := []string{"erhuang", "xipi"}
	tempos := TempoClass.Vocabulary()
	for s := 0; s < 100; s++ {
		rows = append(rows, catalogtest.Header("score.xml"))
		for l := 0; l < 40; l++ {
			rows = append(rows, catalogtest.Row("", line("dan", modes[l%2], tempos[l%len(tempos)], "s", "0", "4")))
		}
	}
	cat, err := catalog.Read(strings.NewReader(catalogtest.Join(rows...)), ".")
	if err != nil {
		b.Fatalf("reading catalog: %v", err)
	}
	ix := NewIndex(cat)
	c := All()
	c.Modes = []string{"xipi"}
	c.TempoClasses = []string{"erliu", "yuanban"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ix.Filter(context.Background(), c, Lines); err != nil {
			b.Fatalf("filter: %v", err)
		}
	}
}
