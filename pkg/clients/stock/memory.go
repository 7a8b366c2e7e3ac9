package stock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// MemoryLedger is an in-process Ledger used in development and tests.
type MemoryLedger struct {
	mu           sync.Mutex
	products     map[string]string
	pickingTypes map[string]string
	lots         []models.StockLot
	scraps       []models.ScrapRequest
	pickings     map[string]*picking
	seq          int

	// ScrapErr, when set, fails every Scrap call after FailAfter successes.
	ScrapErr  error
	FailAfter int
}

type picking struct {
	req       models.MovementRequest
	validated bool
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		products:     make(map[string]string),
		pickingTypes: make(map[string]string),
		pickings:     make(map[string]*picking),
	}
}

// AddProduct registers a product name and returns its id.
func (l *MemoryLedger) AddProduct(name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	id := fmt.Sprintf("product-%d", l.seq)
	l.products[name] = id
	return id
}

// AddPickingType registers a picking type code and returns its id.
func (l *MemoryLedger) AddPickingType(code string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	id := fmt.Sprintf("picking-type-%d", l.seq)
	l.pickingTypes[code] = id
	return id
}

// AddLot stocks quantity of a product at a location and returns the lot id.
func (l *MemoryLedger) AddLot(productID, locationID string, quantity int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	lot := models.StockLot{
		ID:         fmt.Sprintf("lot-%d", l.seq),
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   quantity,
	}
	l.lots = append(l.lots, lot)
	return lot.ID
}

// Lot returns the current state of a lot.
func (l *MemoryLedger) Lot(id string) (models.StockLot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, lot := range l.lots {
		if lot.ID == id {
			return lot, true
		}
	}
	return models.StockLot{}, false
}

// Scraps returns every validated scrap request.
func (l *MemoryLedger) Scraps() []models.ScrapRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ScrapRequest, len(l.scraps))
	copy(out, l.scraps)
	return out
}

// Picking returns a created movement and whether it was validated.
func (l *MemoryLedger) Picking(id string) (models.MovementRequest, bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.pickings[id]
	if !ok {
		return models.MovementRequest{}, false, false
	}
	return p.req, p.validated, true
}

func (l *MemoryLedger) ResolveProduct(_ context.Context, name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id, ok := l.products[name]; ok {
		return id, nil
	}
	return "", models.NotFoundf("product %s", name)
}

func (l *MemoryLedger) ResolvePickingType(_ context.Context, code string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id, ok := l.pickingTypes[code]; ok {
		return id, nil
	}
	return "", models.NotFoundf("picking type %s", code)
}

func (l *MemoryLedger) OnHandLots(_ context.Context, productID string) ([]models.StockLot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.StockLot
	for _, lot := range l.lots {
		if lot.ProductID == productID && lot.Quantity > 0 {
			out = append(out, lot)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out, nil
}

func (l *MemoryLedger) Scrap(_ context.Context, req models.ScrapRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ScrapErr != nil && len(l.scraps) >= l.FailAfter {
		return "", l.ScrapErr
	}
	for i := range l.lots {
		if l.lots[i].ID != req.LotID {
			continue
		}
		if l.lots[i].Quantity < req.Quantity {
			return "", fmt.Errorf("lot %s holds %d, cannot scrap %d", req.LotID, l.lots[i].Quantity, req.Quantity)
		}
		l.lots[i].Quantity -= req.Quantity
		l.scraps = append(l.scraps, req)
		return fmt.Sprintf("scrap-%d", len(l.scraps)), nil
	}
	return "", models.NotFoundf("lot %s", req.LotID)
}

func (l *MemoryLedger) Scrapped(_ context.Context, productID, origin string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, s := range l.scraps {
		if s.ProductID == productID && s.Origin == origin {
			total += s.Quantity
		}
	}
	return total, nil
}

func (l *MemoryLedger) CreateMovement(_ context.Context, req models.MovementRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	id := fmt.Sprintf("picking-%d", l.seq)
	l.pickings[id] = &picking{req: req}
	return id, nil
}

// ValidateMovement books the moved quantity into a destination lot.
func (l *MemoryLedger) ValidateMovement(_ context.Context, pickingID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.pickings[pickingID]
	if !ok {
		return models.NotFoundf("picking %s", pickingID)
	}
	if p.validated {
		return fmt.Errorf("picking %s already validated", pickingID)
	}
	p.validated = true
	l.seq++
	l.lots = append(l.lots, models.StockLot{
		ID:         fmt.Sprintf("lot-%d", l.seq),
		ProductID:  p.req.ProductID,
		LocationID: p.req.Destination,
		Quantity:   p.req.Quantity,
	})
	return nil
}
