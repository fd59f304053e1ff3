package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/PanelCut/internal/geom"
)

// fit is a candidate position for a piece within one sheet's free regions.
type fit struct {
	index   int // Position in freeTracker.regions
	region  geom.Rect
	rotated bool
	score   float64
}

// better reports whether f beats other: lower score, then no rotation, then
// lowest y, then lowest x.
func (f fit) better(other fit) bool {
	if math.Abs(f.score-other.score) > geom.Epsilon {
		return f.score < other.score
	}
	if f.rotated != other.rotated {
		return !f.rotated
	}
	if math.Abs(f.region.Y-other.region.Y) > geom.Epsilon {
		return f.region.Y < other.region.Y
	}
	return f.region.X < other.region.X
}

// freeTracker holds the free regions of one sheet. Regions never overlap and,
// together with the placed footprints, tile the sheet. A footprint is the
// piece plus the kerf on its right and top, clipped only at the sheet
// boundary, so pieces sharing a cut line are always a full kerf apart.
type freeTracker struct {
	sheet         geom.Rect
	regions       []geom.Rect
	split         geom.SplitRule
	kerf          float64
	mergeInterval int
	sinceMerge    int
}

func newFreeTracker(sheet geom.Rect, split geom.SplitRule, kerf float64, mergeInterval int) *freeTracker {
	return &freeTracker{
		sheet:         sheet,
		regions:       []geom.Rect{sheet},
		split:         split,
		kerf:          kerf,
		mergeInterval: mergeInterval,
	}
}

// footprint is the area a length x width piece consumes in region once the
// kerf is added. The kerf may only run past a region edge that lies on the
// sheet boundary; ok is false when the footprint does not fit region.
func (t *freeTracker) footprint(region geom.Rect, length, width float64) (fl, fw float64, ok bool) {
	if !region.Fits(length, width) {
		return 0, 0, false
	}
	fl, fw = length+t.kerf, width+t.kerf
	if region.Right() >= t.sheet.Right()-geom.Epsilon {
		fl = math.Min(fl, region.Length)
	}
	if region.Top() >= t.sheet.Top()-geom.Epsilon {
		fw = math.Min(fw, region.Width)
	}
	return fl, fw, region.Fits(fl, fw)
}

// bestFit returns the best free region for a length x width piece, also
// trying the piece turned 90 degrees when allowRotation is set.
func (t *freeTracker) bestFit(length, width float64, allowRotation bool, score ScoreFunc) (fit, bool) {
	var best fit
	found := false

	try := func(i int, r geom.Rect, l, w float64, rotated bool) {
		fl, fw, ok := t.footprint(r, l, w)
		if !ok {
			return
		}
		cand := fit{index: i, region: r, rotated: rotated, score: score(r, fl, fw)}
		if !found || cand.better(best) {
			best, found = cand, true
		}
	}

	square := math.Abs(length-width) <= geom.Epsilon
	for i, r := range t.regions {
		try(i, r, length, width, false)
		if allowRotation && !square {
			try(i, r, width, length, true)
		}
	}
	return best, found
}

// allocate places a length x width piece (already oriented) at the lower-left
// corner of the chosen region, replaces the region with its residuals and
// returns the piece rectangle. A merge pass runs every mergeInterval
// allocations.
func (t *freeTracker) allocate(f fit, length, width float64) geom.Rect {
	region := t.regions[f.index]
	fl, fw, _ := t.footprint(region, length, width)
	residuals := geom.Subtract(region, fl, fw, t.split)

	regions := make([]geom.Rect, 0, len(t.regions)+1)
	regions = append(regions, t.regions[:f.index]...)
	regions = append(regions, residuals...)
	regions = append(regions, t.regions[f.index+1:]...)
	t.regions = regions

	t.sinceMerge++
	if t.mergeInterval > 0 && t.sinceMerge >= t.mergeInterval {
		t.merge()
	}

	return geom.Rect{X: region.X, Y: region.Y, Length: length, Width: width}
}

// merge joins free regions that share a full edge until no pair is left.
func (t *freeTracker) merge() {
	t.sinceMerge = 0
	for {
		merged := false
		for i := 0; i < len(t.regions) && !merged; i++ {
			for j := i + 1; j < len(t.regions); j++ {
				m, ok := geom.Merge(t.regions[i], t.regions[j])
				if !ok {
					continue
				}
				t.regions[i] = m
				t.regions = append(t.regions[:j], t.regions[j+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			return
		}
	}
}

// sorted returns the free regions ordered by y, then x.
func (t *freeTracker) sorted() []geom.Rect {
	out := make([]geom.Rect, len(t.regions))
	copy(out, t.regions)
	sort.SliceStable(out, func(i, j int) bool {
		if math.Abs(out[i].Y-out[j].Y) > geom.Epsilon {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// freeArea returns the summed area of all free regions.
func (t *freeTracker) freeArea() float64 {
	var total float64
	for _, r := range t.regions {
		total += r.Area()
	}
	return total
}
