package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/PanelCut/internal/model"
)

// Optimizer turns cut lists into cutting plans using stock sheets resolved
// from a Catalog.
type Optimizer struct {
	catalog  Catalog
	settings model.Settings
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithSettings replaces the default settings.
func WithSettings(s model.Settings) Option {
	return func(o *Optimizer) {
		o.settings = s.WithDefaults()
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer sets the tracer used for run spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Optimizer) {
		if t != nil {
			o.tracer = t
		}
	}
}

// New returns an Optimizer that resolves stock sheets from catalog.
func New(catalog Catalog, opts ...Option) *Optimizer {
	o := &Optimizer{
		catalog:  catalog,
		settings: model.DefaultSettings(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("panelcut/engine"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Settings returns the settings the optimizer runs with.
func (o *Optimizer) Settings() model.Settings {
	return o.settings
}

// thicknessGroup is the unit of independent work: pieces that share a stock
// thickness and the specs offered at it.
type thicknessGroup struct {
	thickness float64
	specs     []model.StockSheetSpec
	pieces    []model.PieceInstance
}

// groupByThickness splits ordered pieces by matched stock thickness.
// Groups come out thinnest first; each keeps the pieces' processing order.
func groupByThickness(pieces []model.PieceInstance, specs []model.StockSheetSpec, tolerance float64) []thicknessGroup {
	thicknesses := distinctThicknesses(specs)
	byThickness := make(map[float64]*thicknessGroup)

	for _, p := range pieces {
		t, ok := matchThickness(p.Request.Thickness, thicknesses, tolerance)
		if !ok {
			continue // rejected by Normalize
		}
		g, exists := byThickness[t]
		if !exists {
			g = &thicknessGroup{thickness: t}
			for _, s := range specs {
				if s.Thickness == t {
					g.specs = append(g.specs, s)
				}
			}
			byThickness[t] = g
		}
		g.pieces = append(g.pieces, p)
	}

	groups := make([]thicknessGroup, 0, len(byThickness))
	for _, g := range byThickness {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].thickness < groups[j].thickness
	})
	return groups
}

// Optimize computes a cutting plan for cl. It either places every requested
// piece or fails with no result: *model.UnknownMaterialError,
// *model.InvalidPieceError or *model.UnplaceablePieceError, or the context's
// error when cancelled between pieces.
func (o *Optimizer) Optimize(ctx context.Context, cl model.CutList) (*model.OptimizationResult, error) {
	ctx, span := o.tracer.Start(ctx, "Optimizer.Optimize", trace.WithAttributes(
		attribute.String("material_ref", cl.MaterialRef),
		attribute.Int("piece_lines", len(cl.Pieces)),
		attribute.String("algorithm", string(o.settings.Algorithm)),
	))
	defer span.End()

	result, err := o.optimize(ctx, cl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("sheets", result.Stats.TotalSheets),
		attribute.Float64("global_efficiency", result.Stats.GlobalEfficiency),
	)
	o.logger.Info("optimization complete",
		"material", cl.MaterialRef,
		"pieces", result.Stats.TotalPieces,
		"sheets", result.Stats.TotalSheets,
		"efficiency", math.Round(result.Stats.GlobalEfficiency*100)/100)
	return result, nil
}

func (o *Optimizer) optimize(ctx context.Context, cl model.CutList) (*model.OptimizationResult, error) {
	if err := o.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	specs, err := o.catalog.ResolveStockSheetSpecs(ctx, cl.MaterialRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stock sheets for %q: %w", cl.MaterialRef, err)
	}
	if len(specs) == 0 {
		return nil, &model.UnknownMaterialError{MaterialRef: cl.MaterialRef}
	}

	pieces, err := Normalize(cl.Pieces, specs, o.settings)
	if err != nil {
		return nil, err
	}

	groups := groupByThickness(pieces, specs, o.settings.ThicknessTolerance)

	// Unplaceable pieces are reported before any group starts, so the error
	// does not depend on goroutine scheduling.
	for _, g := range groups {
		if err := checkPlaceable(g.pieces, g.specs); err != nil {
			return nil, err
		}
	}

	states, err := o.runGroups(ctx, groups)
	if err != nil {
		return nil, err
	}
	return aggregate(states), nil
}

// runGroups optimizes each thickness group on its own goroutine, bounded by
// the Concurrency setting. Results keep group order.
func (o *Optimizer) runGroups(ctx context.Context, groups []thicknessGroup) ([][]*sheetState, error) {
	out := make([][]*sheetState, len(groups))
	errs := make([]error, len(groups))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, o.settings.Concurrency))

	for i, g := range groups {
		eg.Go(func() error {
			gctx, span := o.tracer.Start(gctx, "Optimizer.group", trace.WithAttributes(
				attribute.Float64("thickness", g.thickness),
				attribute.Int("pieces", len(g.pieces)),
			))
			defer span.End()

			states, err := o.runGroup(gctx, g)
			if err != nil {
				span.RecordError(err)
				errs[i] = err
				return err
			}
			o.logger.Debug("group optimized",
				"thickness", g.thickness,
				"pieces", len(g.pieces),
				"sheets", len(states))
			out[i] = states
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		// Prefer the first group's own failure over the cancellations it
		// triggered in its siblings.
		for _, e := range errs {
			if e != nil && !errors.Is(e, context.Canceled) {
				return nil, e
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("optimization cancelled: %w", ctxErr)
		}
		return nil, err
	}
	return out, nil
}

// runGroup packs one thickness group with the configured algorithm.
func (o *Optimizer) runGroup(ctx context.Context, g thicknessGroup) ([]*sheetState, error) {
	if o.settings.Algorithm == model.AlgorithmGenetic {
		return newGeneticSearch(o.settings, g, o.logger).run(ctx)
	}
	return newSession(o.settings, g.specs, o.logger).run(ctx, g.pieces)
}
