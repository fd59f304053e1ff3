package model

import (
	"fmt"

	"github.com/piwi3910/PanelCut/internal/geom"
)

// Heuristic names the scoring rule used to pick a free region.
type Heuristic string

const (
	HeuristicBestArea      Heuristic = "best-area"       // Minimize leftover area
	HeuristicBestShortSide Heuristic = "best-short-side" // Minimize the shorter leftover side
	HeuristicBestLongSide  Heuristic = "best-long-side"  // Minimize the longer leftover side
)

// Order names the piece processing order.
type Order string

const (
	OrderAreaDesc        Order = "area-desc"         // Area, then longest side, descending
	OrderLongestSideDesc Order = "longest-side-desc" // Longest side, then area, descending
	OrderInput           Order = "input"             // As entered
)

// StockSelection names the policy for choosing the spec of a new sheet.
type StockSelection string

const (
	StockSmallest StockSelection = "smallest" // Smallest sheet that contains the piece
	StockTrial    StockSelection = "trial"    // Trial-pack the remaining pieces on each candidate
)

// Algorithm names the optimizer driver.
type Algorithm string

const (
	AlgorithmGreedy  Algorithm = "greedy"  // Single pass in processing order (fast)
	AlgorithmGenetic Algorithm = "genetic" // Search over processing orders (slower, often better)
)

// GeneticSettings tunes the ordering search used by AlgorithmGenetic.
type GeneticSettings struct {
	PopulationSize int     `json:"populationSize" mapstructure:"population_size"`
	Generations    int     `json:"generations" mapstructure:"generations"`
	MutationRate   float64 `json:"mutationRate" mapstructure:"mutation_rate"`
	TournamentSize int     `json:"tournamentSize" mapstructure:"tournament_size"`
	EliteCount     int     `json:"eliteCount" mapstructure:"elite_count"`
	Seed           int64   `json:"seed" mapstructure:"seed"`
}

// Settings holds every tunable of an optimization run.
type Settings struct {
	Kerf               float64         `json:"kerf" mapstructure:"kerf"`                               // Blade width allowance in mm
	ThicknessTolerance float64         `json:"thicknessTolerance" mapstructure:"thickness_tolerance"` // mm
	MergeInterval      int             `json:"mergeInterval" mapstructure:"merge_interval"`           // Placements between merge passes, <=0 disables
	Heuristic          Heuristic       `json:"heuristic" mapstructure:"heuristic"`
	Split              geom.SplitRule  `json:"split" mapstructure:"split"`
	Order              Order           `json:"order" mapstructure:"order"`
	StockSelection     StockSelection  `json:"stockSelection" mapstructure:"stock_selection"`
	Algorithm          Algorithm       `json:"algorithm" mapstructure:"algorithm"`
	Concurrency        int             `json:"concurrency" mapstructure:"concurrency"` // Thickness groups run at once
	Genetic            GeneticSettings `json:"genetic" mapstructure:"genetic"`
}

// DefaultGeneticSettings returns the ordering search defaults.
func DefaultGeneticSettings() GeneticSettings {
	return GeneticSettings{
		PopulationSize: 30,
		Generations:    40,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

func DefaultSettings() Settings {
	return Settings{
		Kerf:               0,
		ThicknessTolerance: 0.5,
		MergeInterval:      20,
		Heuristic:          HeuristicBestArea,
		Split:              geom.SplitMaxArea,
		Order:              OrderAreaDesc,
		StockSelection:     StockSmallest,
		Algorithm:          AlgorithmGreedy,
		Concurrency:        4,
		Genetic:            DefaultGeneticSettings(),
	}
}

// Validate reports the first setting outside its allowed range.
func (s Settings) Validate() error {
	if s.Kerf < 0 {
		return fmt.Errorf("kerf must not be negative, got %g", s.Kerf)
	}
	if s.ThicknessTolerance < 0 {
		return fmt.Errorf("thickness tolerance must not be negative, got %g", s.ThicknessTolerance)
	}
	switch s.Heuristic {
	case HeuristicBestArea, HeuristicBestShortSide, HeuristicBestLongSide:
	default:
		return fmt.Errorf("unknown heuristic %q", s.Heuristic)
	}
	if !s.Split.Valid() {
		return fmt.Errorf("unknown split rule %q", s.Split)
	}
	switch s.Order {
	case OrderAreaDesc, OrderLongestSideDesc, OrderInput:
	default:
		return fmt.Errorf("unknown piece order %q", s.Order)
	}
	switch s.StockSelection {
	case StockSmallest, StockTrial:
	default:
		return fmt.Errorf("unknown stock selection %q", s.StockSelection)
	}
	switch s.Algorithm {
	case AlgorithmGreedy, AlgorithmGenetic:
	default:
		return fmt.Errorf("unknown algorithm %q", s.Algorithm)
	}
	return nil
}

// WithDefaults fills zero-valued enum fields from DefaultSettings so a
// partially specified Settings (e.g. from a JSON request) is usable.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Heuristic == "" {
		s.Heuristic = d.Heuristic
	}
	if s.Split == "" {
		s.Split = d.Split
	}
	if s.Order == "" {
		s.Order = d.Order
	}
	if s.StockSelection == "" {
		s.StockSelection = d.StockSelection
	}
	if s.Algorithm == "" {
		s.Algorithm = d.Algorithm
	}
	if s.Concurrency <= 0 {
		s.Concurrency = d.Concurrency
	}
	if s.Genetic.PopulationSize <= 0 {
		s.Genetic = d.Genetic
	}
	return s
}
