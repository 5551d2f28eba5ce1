package score

import (
	"archive/zip"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">
<score-partwise version="3.0">
  <movement-title>Test aria</movement-title>
  <part-list>
    <score-part id="P1"><part-name>Voice</part-name></score-part>
    <score-part id="P2"><part-name>Jinghu</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>2</divisions><time><beats>2</beats><beat-type>4</beat-type></time></attributes>
      <direction><direction-type><words>Xipi</words></direction-type></direction>
      <note><grace/><pitch><step>D</step><octave>4</octave></pitch><type>16th</type></note>
      <note><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration>
        <lyric number="1"><syllabic>single</syllabic><text>我</text></lyric></note>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><chord/><pitch><step>B</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><rest/><duration>1</duration></note>
      <note><pitch><step>B</step><alter>-1</alter><octave>4</octave></pitch><duration>3</duration>
        <lyric number="1"><text>（</text></lyric><lyric number="2"><text>啊</text></lyric></note>
    </measure>
    <measure number="2">
      <note><pitch><step>C</step><alter>1</alter><octave>5</octave></pitch><duration>4</duration><voice>1</voice></note>
      <backup><duration>4</duration></backup>
      <note><pitch><step>A</step><octave>3</octave></pitch><duration>4</duration><voice>2</voice></note>
    </measure>
  </part>
  <part id="P2">
    <measure number="1">
      <attributes><divisions>1</divisions></attributes>
      <note><pitch><step>E</step><octave>5</octave></pitch><duration>4</duration></note>
    </measure>
  </part>
</score-partwise>
`

func decodeFixture(t *testing.T) *Score {
	t.Helper()
	s, err := Decode(strings.NewReader(fixture))
	require.NoError(t, err)
	return s
}

func TestDecodeElements(t *testing.T) {
	s := decodeFixture(t)
	assert.Equal(t, "Test aria", s.Title)
	require.Len(t, s.Parts, 2)
	p := s.Parts[0]
	assert.Equal(t, "Voice", p.Name)

	want := []struct {
		name   string
		offset string
		dur    string
	}{
		{"D4", "0", "0"},
		{"E4", "0", "1"},
		{"G4", "1", "1"},
		{"rest", "2", "1/2"},
		{"B-4", "5/2", "3/2"},
		{"C#5", "4", "2"},
		{"A3", "4", "2"},
	}
	require.Len(t, p.Elements, len(want))
	for i, w := range want {
		e := p.Elements[i]
		name := "rest"
		if !e.Rest {
			name = e.Pitch.NameWithOctave()
		}
		assert.Equal(t, w.name, name, "element %d", i)
		assert.Equal(t, w.offset, e.Offset.RatString(), "offset of element %d", i)
		assert.Equal(t, w.dur, e.Duration.RatString(), "duration of element %d", i)
	}
	assert.True(t, p.Elements[0].IsGrace())
	assert.False(t, p.Elements[3].IsGrace())
	assert.Equal(t, "我", p.Elements[1].Lyric)
	assert.Equal(t, "（\n啊", p.Elements[4].Lyric)
	assert.Equal(t, "2", p.Elements[5].Measure)
}

func TestVoiceParts(t *testing.T) {
	s := decodeFixture(t)
	voices := s.VoiceParts()
	require.Len(t, voices, 1)
	assert.Equal(t, "P1", voices[0].ID)

	p, err := s.VoicePart(1)
	require.NoError(t, err)
	assert.Same(t, voices[0], p)

	_, err = s.VoicePart(2)
	assert.ErrorIs(t, err, apperrors.ErrMalformedScore)
}

func TestDecodeRejectsTimewise(t *testing.T) {
	_, err := Decode(strings.NewReader(`<score-timewise version="3.0"></score-timewise>`))
	assert.ErrorIs(t, err, apperrors.ErrMalformedScore)
}

func TestReadFileCompressed(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "aria.mxl")
	f, err := os.Create(name)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("META-INF/container.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<container><rootfiles><rootfile full-path="aria.xml"/></rootfiles></container>`))
	require.NoError(t, err)
	w, err = zw.Create("aria.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(fixture))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	s, err := ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, name, s.Path)
	assert.Len(t, s.VoiceParts(), 1)
}

func TestReadFilePlain(t *testing.T) {
	name := filepath.Join(t.TempDir(), "aria.xml")
	require.NoError(t, os.WriteFile(name, []byte(fixture), 0o644))
	s, err := ReadFile(name)
	require.NoError(t, err)
	assert.Len(t, s.Parts, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestSegment(t *testing.T) {
	p := decodeFixture(t).Parts[0]
	span := catalog.NewSpan(big.NewRat(1, 1), big.NewRat(5, 2))
	withRests := p.Segment(span, true)
	require.Len(t, withRests, 3)
	assert.Equal(t, "G4", withRests[0].Pitch.NameWithOctave())
	assert.True(t, withRests[1].Rest)
	assert.Equal(t, "B-4", withRests[2].Pitch.NameWithOctave())

	notes := p.Segment(span, false)
	assert.Len(t, notes, 2)

	// both ends are inclusive, so a zero-width window at 0 holds the grace
	// note and its principal note
	atZero := p.Segment(catalog.NewSpan(new(big.Rat), new(big.Rat)), true)
	assert.Len(t, atZero, 2)

	assert.Empty(t, p.Segment(catalog.NewSpan(big.NewRat(10, 1), big.NewRat(12, 1)), true))
}

func TestGraceDuration(t *testing.T) {
	p := decodeFixture(t).Parts[0]
	assert.Equal(t, 0.25, p.GraceDuration(0.25))
	assert.Equal(t, 1.0, p.GraceDuration(4))
	assert.Len(t, p.Notes(), 6)
}

// BenchmarkDecode measures parsing of a small two-part score.
func BenchmarkDecode(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(strings.NewReader(fixture)); err != nil {
			b.Fatal(err)
		}
	}
}
