package engine

import (
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
)

// ScoreFunc rates placing a length x width footprint in region. Lower is
// better. Callers only score footprints that fit.
type ScoreFunc func(region geom.Rect, length, width float64) float64

// scoreBestArea prefers the region that leaves the least area unused.
func scoreBestArea(region geom.Rect, length, width float64) float64 {
	return region.Area() - length*width
}

// scoreBestShortSide prefers the region whose shorter leftover side is smallest.
func scoreBestShortSide(region geom.Rect, length, width float64) float64 {
	return math.Min(region.Length-length, region.Width-width)
}

// scoreBestLongSide prefers the region whose longer leftover side is smallest.
func scoreBestLongSide(region geom.Rect, length, width float64) float64 {
	return math.Max(region.Length-length, region.Width-width)
}

// ScoreFor returns the scoring strategy named by h, best-area when unknown.
func ScoreFor(h model.Heuristic) ScoreFunc {
	switch h {
	case model.HeuristicBestShortSide:
		return scoreBestShortSide
	case model.HeuristicBestLongSide:
		return scoreBestLongSide
	default:
		return scoreBestArea
	}
}
