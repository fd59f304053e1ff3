package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/piwi3910/PanelCut/internal/model"
)

// chromosome is a candidate processing order: a permutation of indices into
// the group's pieces.
type chromosome struct {
	order      []int
	efficiency float64 // Placed area over opened sheet area
	sheets     []*sheetState
}

// fitter reports whether c beats other: fewer sheets, then higher efficiency.
func (c chromosome) fitter(other chromosome) bool {
	if len(c.sheets) != len(other.sheets) {
		return len(c.sheets) < len(other.sheets)
	}
	return c.efficiency > other.efficiency+1e-12
}

// geneticSearch looks for a processing order that packs a thickness group
// onto fewer, fuller sheets than the greedy order. The greedy order is part
// of the first generation and elitism keeps the best order found, so the
// result never has more sheets than the greedy pass, nor lower efficiency
// at the same sheet count.
type geneticSearch struct {
	settings model.Settings
	config   model.GeneticSettings
	group    thicknessGroup
	rng      *rand.Rand
	logger   *slog.Logger
}

func newGeneticSearch(settings model.Settings, g thicknessGroup, logger *slog.Logger) *geneticSearch {
	cfg := settings.Genetic
	// Scale the search for larger cut lists.
	if n := len(g.pieces); n > 50 {
		cfg.Generations += cfg.Generations / 2
		cfg.PopulationSize += cfg.PopulationSize / 2
	}
	return &geneticSearch{
		settings: settings,
		config:   cfg,
		group:    g,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		logger:   logger,
	}
}

// run evolves the population and returns the packing of the fittest order.
func (g *geneticSearch) run(ctx context.Context) ([]*sheetState, error) {
	if len(g.group.pieces) < 2 || g.config.PopulationSize < 1 {
		return newSession(g.settings, g.group.specs, g.logger).run(ctx, g.group.pieces)
	}

	population := g.initPopulation()
	for i := range population {
		if err := g.evaluate(ctx, &population[i]); err != nil {
			return nil, err
		}
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		g.rank(population)

		next := make([]chromosome, 0, g.config.PopulationSize)
		elite := min(g.config.EliteCount, len(population))
		for i := 0; i < elite; i++ {
			next = append(next, population[i])
		}

		for len(next) < g.config.PopulationSize {
			child := g.orderCrossover(g.tournamentSelect(population), g.tournamentSelect(population))
			g.mutate(&child)
			if err := g.evaluate(ctx, &child); err != nil {
				return nil, err
			}
			next = append(next, child)
		}
		population = next
	}

	g.rank(population)
	best := population[0]
	g.logger.Debug("genetic search finished",
		"thickness", g.group.thickness,
		"generations", g.config.Generations,
		"efficiency", best.efficiency,
		"sheets", len(best.sheets))
	return best.sheets, nil
}

// rank sorts fittest first. The stable sort keeps earlier
// individuals ahead on ties, which keeps the greedy order when nothing beats it.
func (g *geneticSearch) rank(population []chromosome) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitter(population[j])
	})
}

// initPopulation seeds the greedy order followed by random permutations.
func (g *geneticSearch) initPopulation() []chromosome {
	n := len(g.group.pieces)
	population := make([]chromosome, g.config.PopulationSize)

	greedy := make([]int, n)
	for i := range greedy {
		greedy[i] = i
	}
	population[0] = chromosome{order: greedy}

	for i := 1; i < len(population); i++ {
		population[i] = chromosome{order: g.rng.Perm(n)}
	}
	return population
}

// evaluate packs c's order and records its sheets and overall efficiency.
func (g *geneticSearch) evaluate(ctx context.Context, c *chromosome) error {
	pieces := make([]model.PieceInstance, len(c.order))
	for i, idx := range c.order {
		pieces[i] = g.group.pieces[idx]
	}

	sheets, err := newSession(g.settings, g.group.specs, g.logger).run(ctx, pieces)
	if err != nil {
		return fmt.Errorf("genetic search: %w", err)
	}

	var used, total float64
	for _, s := range sheets {
		for _, p := range s.placements {
			used += p.Area()
		}
		total += s.spec.Area()
	}

	c.sheets = sheets
	c.efficiency = 0
	if total > 0 {
		c.efficiency = used / total
	}
	return nil
}

// tournamentSelect picks the fittest of TournamentSize random individuals.
func (g *geneticSearch) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitter(best) {
			best = candidate
		}
	}
	return best
}

// orderCrossover (OX1) keeps a slice of parent1 in place and fills the rest
// with parent2's genes in parent2's order.
func (g *geneticSearch) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	child := chromosome{order: make([]int, n)}
	if n <= 2 {
		copy(child.order, parent1.order)
		return child
	}

	p1, p2 := g.rng.Intn(n), g.rng.Intn(n)
	if p1 > p2 {
		p1, p2 = p2, p1
	}

	inSegment := make(map[int]bool, p2-p1+1)
	for i := p1; i <= p2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	pos := (p2 + 1) % n
	for _, gene := range parent2.order {
		if !inSegment[gene] {
			child.order[pos] = gene
			pos = (pos + 1) % n
		}
	}
	return child
}

// mutate applies swap and inversion mutations.
func (g *geneticSearch) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for ; i < j; i, j = i+1, j-1 {
			c.order[i], c.order[j] = c.order[j], c.order[i]
		}
	}
}
