package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/metrics"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/service/allocation"
	"github.com/mamadbah2/hatchery/internal/service/audit"
	"github.com/mamadbah2/hatchery/pkg/clients/stock"
)

var fixedNow = time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	store  *memory.Store
	ledger *stock.MemoryLedger
	notes  *audit.Recorder
	refs   stock.References
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	ledger := stock.NewMemoryLedger()
	ledger.AddProduct("Eggs")
	ledger.AddProduct("Day-Old Chicks")
	ledger.AddPickingType("internal")
	refs, err := stock.ResolveReferences(ctx, ledger, stock.ReferenceNames{
		EggsProduct:         "Eggs",
		ChicksProduct:       "Day-Old Chicks",
		InternalPickingType: "internal",
	}, nil)
	require.NoError(t, err)

	f := &fixture{
		store:  memory.NewStore(nil),
		ledger: ledger,
		notes:  &audit.Recorder{},
		refs:   refs,
	}
	f.svc = f.newService(refs)
	return f
}

func (f *fixture) newService(refs stock.References) *Service {
	return NewService(f.store, f.ledger, refs, f.notes, metrics.New(), Options{
		SetterPool:          allocation.DefaultPool{Kind: models.MachineSetter, Count: 7, Capacity: 100000},
		HatcherPool:         allocation.DefaultPool{Kind: models.MachineHatcher, Count: 1, Capacity: 100000},
		SourceLocation:      "HATCH/Stock",
		DestinationLocation: "COLD/Stock",
		Now:                 func() time.Time { return fixedNow },
	}, nil)
}

func (f *fixture) bootstrap(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.Bootstrap(context.Background()))
}

func (f *fixture) batch(t *testing.T, qty int) models.Batch {
	t.Helper()
	b, err := f.svc.CreateBatch(context.Background(), NewBatch{QuantityReceived: qty})
	require.NoError(t, err)
	return b
}

func (f *fixture) reload(t *testing.T, id int64) BatchDetail {
	t.Helper()
	d, err := f.svc.GetBatch(context.Background(), id)
	require.NoError(t, err)
	return d
}

func (f *fixture) stockEggs(t *testing.T, quantities ...int) []string {
	t.Helper()
	ids := make([]string, 0, len(quantities))
	for _, q := range quantities {
		ids = append(ids, f.ledger.AddLot(f.refs.EggsProductID, "WH/Stock", q))
	}
	return ids
}

func (f *fixture) lotQty(t *testing.T, id string) int {
	t.Helper()
	lot, ok := f.ledger.Lot(id)
	require.True(t, ok)
	return lot.Quantity
}
