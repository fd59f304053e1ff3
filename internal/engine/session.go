package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/piwi3910/PanelCut/internal/model"
)

// session is the mutable state of one optimization run over a single
// thickness group. It is owned by one goroutine for its whole life.
type session struct {
	settings model.Settings
	specs    []model.StockSheetSpec // Group specs in catalog order
	score    ScoreFunc
	alloc    *allocator
	logger   *slog.Logger
}

func newSession(settings model.Settings, specs []model.StockSheetSpec, logger *slog.Logger) *session {
	return &session{
		settings: settings,
		specs:    specs,
		score:    ScoreFor(settings.Heuristic),
		alloc:    newAllocator(settings),
		logger:   logger,
	}
}

// orientations returns the (length, width) pairs a piece may be laid as,
// unrotated first.
func orientations(p model.PieceInstance) [][2]float64 {
	if p.Request.Grain.AllowsRotation() && p.Length() != p.Width() {
		return [][2]float64{{p.Length(), p.Width()}, {p.Width(), p.Length()}}
	}
	return [][2]float64{{p.Length(), p.Width()}}
}

// fitsEmpty reports whether p fits an empty sheet of spec in an allowed orientation.
func fitsEmpty(p model.PieceInstance, spec model.StockSheetSpec) bool {
	for _, o := range orientations(p) {
		if spec.Rect().Fits(o[0], o[1]) {
			return true
		}
	}
	return false
}

// checkPlaceable fails with UnplaceablePieceError for the first piece that no
// stock spec can hold even when empty.
func checkPlaceable(pieces []model.PieceInstance, specs []model.StockSheetSpec) error {
	for _, p := range pieces {
		ok := false
		for _, spec := range specs {
			if fitsEmpty(p, spec) {
				ok = true
				break
			}
		}
		if !ok {
			return &model.UnplaceablePieceError{
				PieceID:   p.ID,
				Reference: p.Request.Reference,
				Length:    p.Length(),
				Width:     p.Width(),
				Thickness: p.Request.Thickness,
				Grain:     p.Request.Grain,
			}
		}
	}
	return nil
}

// run places every piece in order. It returns the sheets in opening order,
// or an error and no sheets.
func (s *session) run(ctx context.Context, pieces []model.PieceInstance) ([]*sheetState, error) {
	if err := checkPlaceable(pieces, s.specs); err != nil {
		return nil, err
	}

	for i, p := range pieces {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("optimization cancelled before piece %s: %w", p.ID, err)
		}
		if !s.tryExisting(p) {
			spec := s.selectSpec(pieces[i:])
			sheet := s.alloc.openNewSheet(spec)
			s.logger.Debug("opened sheet",
				"stock", spec.ID,
				"thickness", spec.Thickness,
				"open_of_spec", len(s.alloc.openSheets(spec)),
				"piece", p.ID)
			if !s.placeOn(sheet, p) {
				// selectSpec only returns specs the piece fits when empty.
				return nil, fmt.Errorf("piece %s did not fit a fresh %s sheet", p.ID, spec.ID)
			}
		}
	}

	for _, sheet := range s.alloc.allSheets() {
		sheet.free.merge()
	}
	return s.alloc.allSheets(), nil
}

// tryExisting places p on the first open sheet, in opening order, that has
// room for it.
func (s *session) tryExisting(p model.PieceInstance) bool {
	for _, sheet := range s.alloc.allSheets() {
		if s.placeOn(sheet, p) {
			return true
		}
	}
	return false
}

// placeOn places p in the best free region of sheet, if any.
func (s *session) placeOn(sheet *sheetState, p model.PieceInstance) bool {
	f, ok := sheet.free.bestFit(p.Length(), p.Width(), p.Request.Grain.AllowsRotation(), s.score)
	if !ok {
		return false
	}

	length, width := p.Length(), p.Width()
	edging := p.Request.Edging
	if f.rotated {
		length, width = width, length
		edging = edging.Rotated()
	}
	r := sheet.free.allocate(f, length, width)

	sheet.placements = append(sheet.placements, model.Placement{
		PieceID:   p.ID,
		Name:      p.Request.Name,
		Reference: p.Request.Reference,
		X:         r.X,
		Y:         r.Y,
		Length:    r.Length,
		Width:     r.Width,
		Rotated:   f.rotated,
		Edging:    edging,
	})
	return true
}

// selectSpec picks the stock spec for a new sheet that must hold remaining[0].
func (s *session) selectSpec(remaining []model.PieceInstance) model.StockSheetSpec {
	var candidates []model.StockSheetSpec
	for _, spec := range s.specs {
		if fitsEmpty(remaining[0], spec) {
			candidates = append(candidates, spec)
		}
	}

	if s.settings.StockSelection == model.StockTrial && len(candidates) > 1 {
		return s.trialSelect(candidates, remaining)
	}
	return smallestSpec(candidates)
}

// smallestSpec returns the spec with the least area, then shortest length,
// then narrowest width; catalog order breaks remaining ties.
func smallestSpec(candidates []model.StockSheetSpec) model.StockSheetSpec {
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.Area() < best.Area():
			best = c
		case c.Area() == best.Area() && c.Length < best.Length:
			best = c
		case c.Area() == best.Area() && c.Length == best.Length && c.Width < best.Width:
			best = c
		}
	}
	return best
}

// trialSelect packs the remaining pieces onto one empty sheet of each
// candidate and keeps the spec with the highest efficiency. Equal
// efficiencies fall back to the smallest spec.
func (s *session) trialSelect(candidates []model.StockSheetSpec, remaining []model.PieceInstance) model.StockSheetSpec {
	bestEff := -1.0
	var tied []model.StockSheetSpec

	for _, spec := range candidates {
		trial := &sheetState{
			spec: spec,
			free: newFreeTracker(spec.Rect(), s.settings.Split, s.settings.Kerf, s.settings.MergeInterval),
		}
		var used float64
		for _, p := range remaining {
			if s.placeOn(trial, p) {
				used += p.Area()
			}
		}
		eff := used / spec.Area()

		switch {
		case eff > bestEff+1e-9:
			bestEff = eff
			tied = []model.StockSheetSpec{spec}
		case math.Abs(eff-bestEff) <= 1e-9:
			tied = append(tied, spec)
		}
	}
	return smallestSpec(tied)
}
