// Package scoretest builds in-memory parts for tests.
package scoretest

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
)

// Part builds a part from tokens laid end to end. A token is
// "pitch:duration[:lyric]" or "r:duration" for a rest; a zero duration
// makes a grace note. Durations accept "n/d" and decimals.
func Part(tokens ...string) *score.Part {
	p := &score.Part{ID: "P1", Name: "Voice"}
	pos := new(big.Rat)
	for _, tok := range tokens {
		fields := strings.SplitN(tok, ":", 3)
		if len(fields) < 2 {
			panic(fmt.Sprintf("scoretest: bad token %q", tok))
		}
		dur, ok := new(big.Rat).SetString(fields[1])
		if !ok {
			panic(fmt.Sprintf("scoretest: bad duration in %q", tok))
		}
		e := score.Element{Offset: new(big.Rat).Set(pos), Duration: dur}
		if fields[0] == "r" {
			e.Rest = true
		} else {
			e.Pitch = score.MustPitch(fields[0])
		}
		if len(fields) == 3 {
			e.Lyric = fields[2]
		}
		p.Elements = append(p.Elements, e)
		pos.Add(pos, dur)
	}
	return p
}

// Score wraps parts into a score at path.
func Score(path string, parts ...*score.Part) *score.Score {
	return &score.Score{Path: path, Title: path, Parts: parts}
}

// Source serves fixed scores by path.
type Source map[string]*score.Score

func (s Source) Load(_ context.Context, path string) (*score.Score, error) {
	sc, ok := s[path]
	if !ok {
		return nil, fmt.Errorf("scoretest: no score %q", path)
	}
	return sc, nil
}
