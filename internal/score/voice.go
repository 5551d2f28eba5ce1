package score

import (
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// VoiceParts returns the sung parts: those whose first note with a
// duration carries a lyric. Accompaniment staves have no lyrics.
func (s *Score) VoiceParts() []*Part {
	var out []*Part
	for _, p := range s.Parts {
		for _, e := range p.Elements {
			if e.Rest || e.IsGrace() {
				continue
			}
			if e.HasLyric() {
				out = append(out, p)
			}
			break
		}
	}
	return out
}

// VoicePart returns the n-th voice part, counting from 1 as the catalog
// does.
func (s *Score) VoicePart(n int) (*Part, error) {
	parts := s.VoiceParts()
	if n < 1 || n > len(parts) {
		return nil, apperrors.Newf(apperrors.ErrMalformedScore, "%s: voice part %d requested, score has %d", s.Path, n, len(parts))
	}
	return parts[n-1], nil
}
