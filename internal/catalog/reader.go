package catalog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

const utf8BOM = "\ufeff"

// Load opens and parses the catalog at path. Score paths are resolved
// against the catalog's directory.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	cat, err := Read(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	slog.Debug("catalog loaded", "path", path, "scores", len(cat.Scores), "lines", cat.Len())
	return cat, nil
}

// Read parses catalog rows from r.
//
// A row with a score path starts a new score, whose first part is opened
// implicitly. If that row mentions "Part 1" it is only a header; otherwise
// it is also the first data row. A row without a score path that mentions
// "Part" opens the next part. Every other non-blank row is a data row of the
// current part.
func Read(r io.Reader, dir string) (*Catalog, error) {
	cat := &Catalog{Dir: dir}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	row := 0
	for scanner.Scan() {
		row++
		line := scanner.Text()
		if row == 1 {
			line = strings.TrimPrefix(line, utf8BOM)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		name := strings.TrimSpace(fields[colScore])

		if name != "" {
			cat.Scores = append(cat.Scores, Score{
				Name:  name,
				Path:  filepath.Join(dir, filepath.FromSlash(name)),
				Parts: []Part{{Index: 1}},
			})
			if strings.Contains(line, "Part 1") {
				continue
			}
		} else if strings.Contains(line, "Part") {
			if len(cat.Scores) == 0 {
				return nil, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d: part header before any score", row)
			}
			s := &cat.Scores[len(cat.Scores)-1]
			s.Parts = append(s.Parts, Part{Index: len(s.Parts) + 1})
			continue
		}

		if len(cat.Scores) == 0 {
			return nil, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d: data row before any score", row)
		}
		s := &cat.Scores[len(cat.Scores)-1]
		p := &s.Parts[len(s.Parts)-1]
		rec, err := parseRecord(fields, row)
		if err != nil {
			return nil, err
		}
		rec.Score = s.Name
		rec.Path = s.Path
		rec.Part = p.Index
		p.Records = append(p.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning catalog: %w", err)
	}
	return cat, nil
}

func parseRecord(fields []string, row int) (Record, error) {
	if len(fields) < minDataCols {
		return Record{}, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d: %d columns, want at least %d", row, len(fields), minDataCols)
	}
	rec := Record{
		Row:        row,
		RoleType:   strings.TrimSpace(fields[colRoleType]),
		Mode:       strings.TrimSpace(fields[colMode]),
		TempoClass: strings.TrimSpace(fields[colTempoClass]),
		LineType:   strings.TrimSpace(fields[colLineType]),
	}
	line, err := parseSpan(fields, colLineStart, row)
	if err != nil {
		return Record{}, err
	}
	if line == nil {
		return Record{}, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d: line start and end are empty", row)
	}
	rec.Line = *line
	for i, col := range sectionCols {
		sec, err := parseSpan(fields, col, row)
		if err != nil {
			return Record{}, err
		}
		rec.Sections[i] = sec
	}
	return rec, nil
}

// parseSpan reads the start/end pair at col and col+1. Missing columns and
// empty fields give a nil span; a half-filled pair is malformed.
func parseSpan(fields []string, col, row int) (*Span, error) {
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	start, err := ParseTime(field(col))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d, column %d: %v", row, col+1, err)
	}
	end, err := ParseTime(field(col + 1))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d, column %d: %v", row, col+2, err)
	}
	switch {
	case start == nil && end == nil:
		return nil, nil
	case start == nil || end == nil:
		return nil, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d, columns %d-%d: start and end must both be set", row, col+1, col+2)
	case start.Cmp(end) > 0:
		return nil, apperrors.Newf(apperrors.ErrMalformedCatalog, "row %d, columns %d-%d: start %s after end %s", row, col+1, col+2, FormatTime(start), FormatTime(end))
	}
	return &Span{Start: start, End: end}, nil
}
