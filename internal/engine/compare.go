package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/PanelCut/internal/model"
)

// ComparisonScenario is a named settings variant to compare.
type ComparisonScenario struct {
	Name     string         `json:"name"`
	Settings model.Settings `json:"settings"`
}

// ComparisonResult holds one scenario's plan and headline numbers.
type ComparisonResult struct {
	Scenario         ComparisonScenario        `json:"scenario"`
	Result           *model.OptimizationResult `json:"result,omitempty"`
	SheetsUsed       int                       `json:"sheetsUsed"`
	GlobalEfficiency float64                   `json:"globalEfficiency"`
	WastePercent     float64                   `json:"wastePercent"`
	TotalCost        float64                   `json:"totalCost"`
	Err              string                    `json:"error,omitempty"`
}

// CompareScenarios optimizes cl once per scenario, in scenario order. A
// scenario that fails is reported in its result rather than aborting the
// comparison; cancellation of ctx does abort it.
func CompareScenarios(ctx context.Context, catalog Catalog, cl model.CutList, scenarios []ComparisonScenario, opts ...Option) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opt := New(catalog, append(opts, WithSettings(sc.Settings))...)
		res, err := opt.Optimize(ctx, cl)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			results = append(results, ComparisonResult{Scenario: sc, Err: err.Error()})
			continue
		}

		results = append(results, ComparisonResult{
			Scenario:         sc,
			Result:           res,
			SheetsUsed:       res.Stats.TotalSheets,
			GlobalEfficiency: res.Stats.GlobalEfficiency,
			WastePercent:     100.0 - res.Stats.GlobalEfficiency,
			TotalCost:        res.Stats.TotalCost,
		})
	}
	return results, nil
}

// BuildDefaultScenarios derives what-if variants from base: the other
// algorithm, the other scoring heuristics and, when a kerf is set, half the
// kerf.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	base = base.WithDefaults()
	scenarios := []ComparisonScenario{{Name: "Current Settings", Settings: base}}

	alt := base
	if base.Algorithm == model.AlgorithmGreedy {
		alt.Algorithm = model.AlgorithmGenetic
		scenarios = append(scenarios, ComparisonScenario{Name: "Genetic Ordering", Settings: alt})
	} else {
		alt.Algorithm = model.AlgorithmGreedy
		scenarios = append(scenarios, ComparisonScenario{Name: "Greedy", Settings: alt})
	}

	for _, h := range []model.Heuristic{model.HeuristicBestArea, model.HeuristicBestShortSide, model.HeuristicBestLongSide} {
		if h == base.Heuristic {
			continue
		}
		v := base
		v.Heuristic = h
		scenarios = append(scenarios, ComparisonScenario{Name: "Heuristic " + string(h), Settings: v})
	}

	if base.StockSelection == model.StockSmallest {
		v := base
		v.StockSelection = model.StockTrial
		scenarios = append(scenarios, ComparisonScenario{Name: "Trial Stock Selection", Settings: v})
	}

	if base.Kerf > 1.0 {
		v := base
		v.Kerf = base.Kerf * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", v.Kerf),
			Settings: v,
		})
	}
	return scenarios
}
