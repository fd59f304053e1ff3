package engine

import (
	"github.com/piwi3910/PanelCut/internal/model"
)

// sheetState is one sheet opened during a run.
type sheetState struct {
	spec       model.StockSheetSpec
	placements []model.Placement
	free       *freeTracker
}

// allocator owns the sheets opened by a run, in opening order. Sheets are
// never removed once opened.
type allocator struct {
	settings model.Settings
	sheets   []*sheetState
	bySpec   map[string][]*sheetState
}

func newAllocator(settings model.Settings) *allocator {
	return &allocator{
		settings: settings,
		bySpec:   make(map[string][]*sheetState),
	}
}

// openSheets returns the sheets opened so far for spec, in opening order.
func (a *allocator) openSheets(spec model.StockSheetSpec) []*sheetState {
	return a.bySpec[spec.ID]
}

// allSheets returns every open sheet in opening order.
func (a *allocator) allSheets() []*sheetState {
	return a.sheets
}

// openNewSheet starts a fresh sheet of spec with its whole area free.
func (a *allocator) openNewSheet(spec model.StockSheetSpec) *sheetState {
	s := &sheetState{
		spec: spec,
		free: newFreeTracker(spec.Rect(), a.settings.Split, a.settings.Kerf, a.settings.MergeInterval),
	}
	a.sheets = append(a.sheets, s)
	a.bySpec[spec.ID] = append(a.bySpec[spec.ID], s)
	return s
}
