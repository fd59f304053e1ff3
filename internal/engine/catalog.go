package engine

import (
	"context"

	"github.com/piwi3910/PanelCut/internal/model"
)

// Catalog resolves the stock sheets offered for a material. It is consulted
// once per run, before any placement.
type Catalog interface {
	ResolveStockSheetSpecs(ctx context.Context, materialRef string) ([]model.StockSheetSpec, error)
}

// CatalogFunc adapts a plain function to the Catalog interface.
type CatalogFunc func(ctx context.Context, materialRef string) ([]model.StockSheetSpec, error)

func (f CatalogFunc) ResolveStockSheetSpecs(ctx context.Context, materialRef string) ([]model.StockSheetSpec, error) {
	return f(ctx, materialRef)
}
