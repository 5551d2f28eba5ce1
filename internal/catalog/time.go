package catalog

import (
	"fmt"
	"math/big"
	"strings"
)

// Span is an inclusive [Start, End] offset window in quarter lengths.
type Span struct {
	Start *big.Rat
	End   *big.Rat
}

func NewSpan(start, end *big.Rat) Span {
	return Span{Start: start, End: end}
}

// Contains reports whether offset lies in the window, both ends inclusive.
func (s Span) Contains(offset *big.Rat) bool {
	return s.Start.Cmp(offset) <= 0 && offset.Cmp(s.End) <= 0
}

func (s Span) String() string {
	return fmt.Sprintf("[%s, %s]", FormatTime(s.Start), FormatTime(s.End))
}

// ParseTime parses a catalog time field. "n/d" and decimal literals both
// become exact rationals; an empty field is absent and returns nil.
func ParseTime(field string) (*big.Rat, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	r, ok := new(big.Rat).SetString(field)
	if !ok {
		return nil, fmt.Errorf("invalid time value %q", field)
	}
	return r, nil
}

// MustTime is ParseTime for literals known to be valid.
func MustTime(field string) *big.Rat {
	r, err := ParseTime(field)
	if err != nil {
		panic(err)
	}
	return r
}

// FormatTime prints integers and dyadic values as decimals and everything
// else as n/d.
func FormatTime(r *big.Rat) string {
	if r == nil {
		return ""
	}
	if r.IsInt() {
		return r.Num().String()
	}
	if f, exact := r.Float64(); exact {
		return fmt.Sprintf("%g", f)
	}
	return r.RatString()
}
