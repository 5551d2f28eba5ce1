package criteria

import (
	roaring "github.com/RoaringBitmap/roaring"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
)

// Index holds one posting bitmap of record ordinals per (axis, value).
// Ordinals follow catalog file order, so iterating a bitmap visits records
// in the order they were catalogued.
type Index struct {
	records  []catalog.Record
	scoreOf  []int
	scores   []catalog.Score
	postings [numAxes]map[string]*roaring.Bitmap
}

func NewIndex(cat *catalog.Catalog) *Index {
	ix := &Index{
		records: make([]catalog.Record, 0, cat.Len()),
		scoreOf: make([]int, 0, cat.Len()),
		scores:  cat.Scores,
	}
	for a := range ix.postings {
		ix.postings[a] = make(map[string]*roaring.Bitmap)
	}
	for si, s := range cat.Scores {
		for _, p := range s.Parts {
			for _, rec := range p.Records {
				id := uint32(len(ix.records))
				ix.records = append(ix.records, rec)
				ix.scoreOf = append(ix.scoreOf, si)
				for _, a := range Axes {
					ix.add(a, a.Of(rec), id)
				}
			}
		}
	}
	return ix
}

func (ix *Index) add(a Axis, value string, id uint32) {
	bm, ok := ix.postings[a][value]
	if !ok {
		bm = roaring.New()
		ix.postings[a][value] = bm
	}
	bm.Add(id)
}

// Len is the number of indexed records.
func (ix *Index) Len() int { return len(ix.records) }

// Match returns the ordinals of records whose four fields are each allowed
// by c: a union of postings within an axis, intersected across axes.
func (ix *Index) Match(c Criteria) *roaring.Bitmap {
	var result *roaring.Bitmap
	for _, a := range Axes {
		axis := ix.union(a, c.Values(a))
		if result == nil {
			result = axis
			continue
		}
		result.And(axis)
		if result.IsEmpty() {
			break
		}
	}
	if result == nil {
		return roaring.New()
	}
	return result
}

func (ix *Index) union(a Axis, values []string) *roaring.Bitmap {
	bms := make([]*roaring.Bitmap, 0, len(values))
	for _, v := range values {
		if bm, ok := ix.postings[a][v]; ok {
			bms = append(bms, bm)
		}
	}
	if len(bms) == 0 {
		return roaring.New()
	}
	// FastOr returns a fresh bitmap, so the postings are never mutated.
	return roaring.FastOr(bms...)
}

// Record returns the record with the given ordinal.
func (ix *Index) Record(id uint32) catalog.Record {
	return ix.records[id]
}
