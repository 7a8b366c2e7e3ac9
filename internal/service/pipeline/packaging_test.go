package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/pkg/clients/stock"
)

func packagedUnit(t *testing.T, f *fixture, eggs, hatchMortality int) models.PackagingUnit {
	t.Helper()
	ctx := context.Background()
	f.bootstrap(t)
	b := f.batch(t, eggs)
	_, err := f.svc.SendToSetter(ctx, b.ID)
	require.NoError(t, err)
	hatcher, err := f.svc.MoveToHatcher(ctx, b.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.RecordStageMortality(ctx, hatcher.ID, hatchMortality)
	require.NoError(t, err)
	unit, err := f.svc.MoveToPackaging(ctx, hatcher.ID)
	require.NoError(t, err)
	return unit
}

func TestPackagingBoxes(t *testing.T) {
	for _, tc := range []struct{ chicks, boxes int }{{0, 0}, {39, 0}, {40, 1}, {81, 2}} {
		f := newFixture(t)
		unit := packagedUnit(t, f, 100, 100-tc.chicks)
		assert.Equal(t, tc.chicks, unit.ChicksCount)
		assert.Equal(t, tc.boxes, unit.Boxes())
	}
}

func TestPackagingMortalityBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := packagedUnit(t, f, 100, 20)

	_, err := f.svc.RecordPackagingMortality(ctx, unit.ID, 81)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.svc.RecordPackagingMortality(ctx, unit.ID, -1)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.PackagingDone(ctx, unit.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReadyForTransferWithNoSurvivors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := packagedUnit(t, f, 100, 60)

	_, err := f.svc.RecordPackagingMortality(ctx, unit.ID, 40)
	require.NoError(t, err)
	transfer, err := f.svc.ReadyForTransfer(ctx, unit.ID)
	require.NoError(t, err)
	assert.Nil(t, transfer)

	got, err := f.svc.GetPackaging(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PackagingReadyForTransfer, got.Status)
	assert.Empty(t, f.store.Snapshot().Transfers)
	assert.Contains(t, f.notes.For(packagingEntity(unit.ID)), "no chicks left to transfer after packaging mortality")

	_, err = f.svc.RecordPackagingMortality(ctx, unit.ID, 1)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTransferDoneRequiresReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := packagedUnit(t, f, 100, 0)
	transfer, err := f.svc.ReadyForTransfer(ctx, unit.ID)
	require.NoError(t, err)
	require.NotNil(t, transfer)

	noChicks := f.newService(stock.References{EggsProductID: f.refs.EggsProductID, InternalPickingTypeID: f.refs.InternalPickingTypeID})
	_, err = noChicks.TransferDone(ctx, transfer.ID)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	noPicking := f.newService(stock.References{ChicksProductID: f.refs.ChicksProductID})
	_, err = noPicking.TransferDone(ctx, transfer.ID)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = f.svc.SetTransferLocations(ctx, transfer.ID, " ", "COLD/Stock")
	require.NoError(t, err)
	_, err = f.svc.TransferDone(ctx, transfer.ID)
	assert.ErrorIs(t, err, models.ErrValidation)

	updated, err := f.svc.SetTransferLocations(ctx, transfer.ID, "HATCH/B", "COLD/Stock")
	require.NoError(t, err)
	assert.Equal(t, "HATCH/B", updated.Source)

	done, err := f.svc.TransferDone(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferDone, done.Status)

	_, err = f.svc.SetTransferLocations(ctx, transfer.ID, "A", "B")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = f.svc.TransferDone(ctx, transfer.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTransferDeliveredRequiresLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var orphan models.Transfer
	require.NoError(t, f.store.RunInTransaction(ctx, func(tx *memory.Tx) error {
		var err error
		orphan, err = tx.Transfers().Create(models.Transfer{ChicksCount: 10, Status: models.TransferDone})
		return err
	}))

	_, err := f.svc.TransferDelivered(ctx, orphan.ID)
	assert.ErrorIs(t, err, models.ErrConsistency)

	got, err := f.svc.GetTransfer(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferDone, got.Status)
}

func TestTransferDeliveredOnDraftRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unit := packagedUnit(t, f, 100, 0)
	transfer, err := f.svc.ReadyForTransfer(ctx, unit.ID)
	require.NoError(t, err)

	_, err = f.svc.TransferDelivered(ctx, transfer.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}
