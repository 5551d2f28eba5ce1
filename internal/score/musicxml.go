package score

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"golang.org/x/net/html/charset"
)

type xmlScore struct {
	XMLName  xml.Name       `xml:"score-partwise"`
	Title    string         `xml:"movement-title"`
	Work     string         `xml:"work>work-title"`
	PartList []xmlScorePart `xml:"part-list>score-part"`
	Parts    []xmlPart      `xml:"part"`
}

type xmlScorePart struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"part-name"`
}

type xmlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []xmlMeasure `xml:"measure"`
}

type xmlMeasure struct {
	Number string
	Events []any
}

type xmlAttributes struct {
	Divisions int `xml:"divisions"`
}

type xmlNote struct {
	Grace    *struct{}  `xml:"grace"`
	Chord    *struct{}  `xml:"chord"`
	Rest     *struct{}  `xml:"rest"`
	Pitch    *xmlPitch  `xml:"pitch"`
	Duration int        `xml:"duration"`
	Lyrics   []xmlLyric `xml:"lyric"`
}

type xmlPitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter"`
	Octave int     `xml:"octave"`
}

type xmlLyric struct {
	Text []string `xml:"text"`
}

type xmlBackup struct {
	Duration int `xml:"duration"`
}

type xmlForward struct {
	Duration int `xml:"duration"`
}

func (m *xmlMeasure) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "number" {
			m.Number = attr.Value
		}
	}
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		case xml.StartElement:
			var ev any
			switch t.Name.Local {
			case "attributes":
				ev = &xmlAttributes{}
			case "note":
				ev = &xmlNote{}
			case "backup":
				ev = &xmlBackup{}
			case "forward":
				ev = &xmlForward{}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := d.DecodeElement(ev, &t); err != nil {
				return err
			}
			m.Events = append(m.Events, ev)
		}
	}
}

// Decode parses a partwise MusicXML document.
func Decode(r io.Reader) (*Score, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	var doc xmlScore
	if err := d.Decode(&doc); err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedScore, "decoding MusicXML: %v", err)
	}
	names := make(map[string]string, len(doc.PartList))
	for _, sp := range doc.PartList {
		names[sp.ID] = strings.TrimSpace(sp.Name)
	}
	s := &Score{Title: doc.Title}
	if s.Title == "" {
		s.Title = doc.Work
	}
	for _, xp := range doc.Parts {
		p, err := buildPart(xp)
		if err != nil {
			return nil, err
		}
		p.Name = names[xp.ID]
		s.Parts = append(s.Parts, p)
	}
	return s, nil
}

func buildPart(xp xmlPart) (*Part, error) {
	p := &Part{ID: xp.ID}
	divisions := int64(1)
	pos := new(big.Rat)
	for _, m := range xp.Measures {
		cursor := new(big.Rat).Set(pos)
		end := new(big.Rat).Set(pos)
		for _, ev := range m.Events {
			switch e := ev.(type) {
			case *xmlAttributes:
				if e.Divisions > 0 {
					divisions = int64(e.Divisions)
				}
			case *xmlBackup:
				cursor.Sub(cursor, big.NewRat(int64(e.Duration), divisions))
				if cursor.Cmp(pos) < 0 {
					return nil, apperrors.Newf(apperrors.ErrMalformedScore, "part %s measure %s: backup before measure start", xp.ID, m.Number)
				}
			case *xmlForward:
				cursor.Add(cursor, big.NewRat(int64(e.Duration), divisions))
			case *xmlNote:
				// chord members share the onset of the note before them and
				// are not part of the melodic line
				if e.Chord != nil {
					continue
				}
				el, err := buildElement(e, divisions)
				if err != nil {
					return nil, fmt.Errorf("part %s measure %s: %w", xp.ID, m.Number, err)
				}
				el.Offset = new(big.Rat).Set(cursor)
				el.Measure = m.Number
				p.Elements = append(p.Elements, el)
				cursor.Add(cursor, el.Duration)
			}
			if cursor.Cmp(end) > 0 {
				end.Set(cursor)
			}
		}
		pos = end
	}
	sort.SliceStable(p.Elements, func(i, j int) bool {
		return p.Elements[i].Offset.Cmp(p.Elements[j].Offset) < 0
	})
	return p, nil
}

func buildElement(n *xmlNote, divisions int64) (Element, error) {
	el := Element{Duration: new(big.Rat)}
	if n.Grace == nil {
		el.Duration.SetFrac64(int64(n.Duration), divisions)
	}
	switch {
	case n.Rest != nil:
		el.Rest = true
	case n.Pitch != nil:
		step := strings.ToUpper(strings.TrimSpace(n.Pitch.Step))
		if len(step) != 1 || !strings.Contains(steps, step) {
			return Element{}, apperrors.Newf(apperrors.ErrMalformedScore, "invalid step %q", n.Pitch.Step)
		}
		el.Pitch = Pitch{
			Step:   step[0],
			Alter:  int(math.Round(n.Pitch.Alter)),
			Octave: n.Pitch.Octave,
		}
	default:
		// unpitched notes carry no melodic information
		el.Rest = true
	}
	var lines []string
	for _, l := range n.Lyrics {
		if text := strings.Join(l.Text, ""); text != "" {
			lines = append(lines, text)
		}
	}
	el.Lyric = strings.Join(lines, "\n")
	return el, nil
}

// ReadFile parses a .xml, .musicxml or compressed .mxl file.
func ReadFile(name string) (*Score, error) {
	var (
		s   *Score
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".mxl") {
		s, err = readCompressed(name)
	} else {
		var f *os.File
		f, err = os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("opening score: %w", err)
		}
		defer f.Close()
		s, err = Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s.Path = name
	return s, nil
}

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

func readCompressed(name string) (*Score, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedScore, "opening archive: %v", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	root := ""
	if f, ok := files["META-INF/container.xml"]; ok {
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		var c container
		if err := xml.Unmarshal(data, &c); err == nil && len(c.Rootfiles) > 0 {
			root = c.Rootfiles[0].FullPath
		}
	}
	if root == "" {
		for _, f := range zr.File {
			if !strings.HasPrefix(f.Name, "META-INF/") && path.Ext(f.Name) == ".xml" {
				root = f.Name
				break
			}
		}
	}
	f, ok := files[root]
	if !ok {
		return nil, apperrors.New(apperrors.ErrMalformedScore, "archive has no score document")
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedScore, "opening %s: %v", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedScore, "reading %s: %v", f.Name, err)
	}
	return data, nil
}
