// Package reconcile plans scrap deductions against on-hand stock lots.
package reconcile

import (
	"sort"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// Plan greedily deducts total from lots, largest lot first with ties broken by
// lot id. The lot total is checked before anything is planned, so an
// *models.InsufficientStockError means no deduction should be issued.
func Plan(total int, lots []models.StockLot) ([]models.Deduction, error) {
	if total <= 0 {
		return nil, models.Validationf("scrap quantity must be positive, got %d", total)
	}

	available := 0
	candidates := make([]models.StockLot, 0, len(lots))
	for _, lot := range lots {
		if lot.Quantity <= 0 {
			continue
		}
		available += lot.Quantity
		candidates = append(candidates, lot)
	}
	if available < total {
		return nil, &models.InsufficientStockError{Requested: total, Available: available}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Quantity != candidates[j].Quantity {
			return candidates[i].Quantity > candidates[j].Quantity
		}
		return candidates[i].ID < candidates[j].ID
	})

	remaining := total
	var out []models.Deduction
	for _, lot := range candidates {
		if remaining == 0 {
			break
		}
		qty := min(lot.Quantity, remaining)
		out = append(out, models.Deduction{LotID: lot.ID, LocationID: lot.LocationID, Quantity: qty})
		remaining -= qty
	}
	return out, nil
}
