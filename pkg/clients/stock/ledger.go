// Package stock talks to the inventory ledger that owns egg and chick stock.
package stock

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// Ledger exposes the inventory operations the pipeline consumes.
type Ledger interface {
	ResolveProduct(ctx context.Context, name string) (string, error)
	ResolvePickingType(ctx context.Context, code string) (string, error)
	// OnHandLots returns positive lots at internal locations, largest first.
	OnHandLots(ctx context.Context, productID string) ([]models.StockLot, error)
	// Scrap creates and validates one scrap event.
	Scrap(ctx context.Context, req models.ScrapRequest) (string, error)
	// Scrapped sums the validated scraps of productID carrying origin.
	Scrapped(ctx context.Context, productID, origin string) (int, error)
	// CreateMovement creates a draft picking with one move and returns its id.
	CreateMovement(ctx context.Context, req models.MovementRequest) (string, error)
	// ValidateMovement confirms, reserves and validates a picking.
	ValidateMovement(ctx context.Context, pickingID string) error
}

// ReferenceNames are the names looked up once at startup.
type ReferenceNames struct {
	EggsProduct         string
	ChicksProduct       string
	InternalPickingType string
}

// References holds resolved ledger identifiers. An empty field means the
// reference could not be resolved and dependent operations must fail.
type References struct {
	EggsProductID         string
	ChicksProductID       string
	InternalPickingTypeID string
}

// ResolveReferences resolves every configured name. Missing entities are
// logged and left empty; transport failures are returned.
func ResolveReferences(ctx context.Context, ledger Ledger, names ReferenceNames, logger *zap.Logger) (References, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var refs References
	var err error

	if refs.EggsProductID, err = resolve(ctx, names.EggsProduct, ledger.ResolveProduct); err != nil {
		return refs, err
	}
	if refs.ChicksProductID, err = resolve(ctx, names.ChicksProduct, ledger.ResolveProduct); err != nil {
		return refs, err
	}
	if refs.InternalPickingTypeID, err = resolve(ctx, names.InternalPickingType, ledger.ResolvePickingType); err != nil {
		return refs, err
	}

	logger.Info("stock references resolved",
		zap.String("eggs_product", refs.EggsProductID),
		zap.String("chicks_product", refs.ChicksProductID),
		zap.String("internal_picking_type", refs.InternalPickingTypeID))
	if refs.EggsProductID == "" {
		logger.Warn("eggs product not found; breakage will be rejected", zap.String("name", names.EggsProduct))
	}
	if refs.ChicksProductID == "" || refs.InternalPickingTypeID == "" {
		logger.Warn("chick transfer references incomplete; transfers cannot be completed")
	}
	return refs, nil
}

func resolve(ctx context.Context, name string, fn func(context.Context, string) (string, error)) (string, error) {
	if name == "" {
		return "", nil
	}
	id, err := fn(ctx, name)
	if errors.Is(err, models.ErrNotFound) {
		return "", nil
	}
	return id, err
}
