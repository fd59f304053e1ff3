package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/PanelCut/internal/model"
)

// Normalize validates a cut list against the resolved stock specs, expands
// every request into Quantity piece instances and returns them in processing
// order. Requests without an id are numbered "p1", "p2", ... by position.
// The returned instances point at copies of the requests, never at the
// caller's slice.
func Normalize(pieces []model.PieceRequest, specs []model.StockSheetSpec, settings model.Settings) ([]model.PieceInstance, error) {
	reqs := make([]model.PieceRequest, len(pieces))
	copy(reqs, pieces)

	thicknesses := distinctThicknesses(specs)
	seen := make(map[string]bool, len(reqs))

	for i := range reqs {
		r := &reqs[i]
		if r.ID == "" {
			r.ID = fmt.Sprintf("p%d", i+1)
		}
		invalid := func(reason string) error {
			return &model.InvalidPieceError{
				PieceID:   r.ID,
				Reference: r.Reference,
				Length:    r.Length,
				Width:     r.Width,
				Thickness: r.Thickness,
				Quantity:  r.Quantity,
				Reason:    reason,
			}
		}

		if seen[r.ID] {
			return nil, invalid("duplicate piece id")
		}
		seen[r.ID] = true

		if r.Length <= 0 || r.Width <= 0 {
			return nil, invalid("length and width must be positive")
		}
		if r.Quantity < 1 {
			return nil, invalid("quantity must be at least 1")
		}
		if _, ok := matchThickness(r.Thickness, thicknesses, settings.ThicknessTolerance); !ok {
			return nil, invalid(fmt.Sprintf("no stock sheet of thickness %gmm", r.Thickness))
		}
		grain, err := model.ParseGrain(string(r.Grain))
		if err != nil {
			return nil, invalid(err.Error())
		}
		r.Grain = grain
	}

	instances := make([]model.PieceInstance, 0, len(reqs))
	for i := range reqs {
		for k := 1; k <= reqs[i].Quantity; k++ {
			instances = append(instances, model.PieceInstance{
				ID:      fmt.Sprintf("%s-%d", reqs[i].ID, k),
				Request: &reqs[i],
				Seq:     len(instances),
			})
		}
	}

	sortInstances(instances, settings.Order)
	return instances, nil
}

// sortInstances orders pieces for placement. Every order falls back to input
// order, so the result is fully determined.
func sortInstances(instances []model.PieceInstance, order model.Order) {
	longest := func(p model.PieceInstance) float64 { return math.Max(p.Length(), p.Width()) }

	var less func(a, b model.PieceInstance) bool
	switch order {
	case model.OrderInput:
		less = func(a, b model.PieceInstance) bool { return a.Seq < b.Seq }
	case model.OrderLongestSideDesc:
		less = func(a, b model.PieceInstance) bool {
			if la, lb := longest(a), longest(b); la != lb {
				return la > lb
			}
			if a.Area() != b.Area() {
				return a.Area() > b.Area()
			}
			return a.Seq < b.Seq
		}
	default:
		less = func(a, b model.PieceInstance) bool {
			if a.Area() != b.Area() {
				return a.Area() > b.Area()
			}
			if la, lb := longest(a), longest(b); la != lb {
				return la > lb
			}
			return a.Seq < b.Seq
		}
	}

	sort.SliceStable(instances, func(i, j int) bool {
		return less(instances[i], instances[j])
	})
}

// distinctThicknesses returns the spec thicknesses in ascending order.
func distinctThicknesses(specs []model.StockSheetSpec) []float64 {
	set := make(map[float64]bool)
	for _, s := range specs {
		set[s.Thickness] = true
	}
	out := make([]float64, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Float64s(out)
	return out
}

// matchThickness finds the stock thickness closest to t within tolerance.
// On an exact tie the thinner stock wins.
func matchThickness(t float64, thicknesses []float64, tolerance float64) (float64, bool) {
	best, bestDiff := 0.0, math.Inf(1)
	for _, candidate := range thicknesses {
		diff := math.Abs(candidate - t)
		if diff <= tolerance+1e-9 && diff < bestDiff {
			best, bestDiff = candidate, diff
		}
	}
	return best, !math.IsInf(bestDiff, 1)
}
