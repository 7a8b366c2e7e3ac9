package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

type recordingPersister struct {
	snap  Snapshot
	saves int
	err   error
}

func (p *recordingPersister) Load(context.Context) (Snapshot, error) { return p.snap, nil }

func (p *recordingPersister) Save(_ context.Context, snap Snapshot) error {
	if p.err != nil {
		return p.err
	}
	p.saves++
	p.snap = snap
	return nil
}

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	var created models.Machine
	err := store.RunInTransaction(ctx, func(tx *Tx) error {
		var err error
		created, err = tx.Machines().Create(models.Machine{Name: "Setter 1", Kind: models.MachineSetter, Capacity: 100})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	err = store.RunInTransaction(ctx, func(tx *Tx) error {
		created.Capacity = 200
		return tx.Machines().Update(created)
	})
	require.NoError(t, err)

	err = store.View(ctx, func(tx *Tx) error {
		got, err := tx.Machines().Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, 200, got.Capacity)

		_, err = tx.Machines().Get(99)
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, func(tx *Tx) error {
		return tx.Machines().Delete(created.ID)
	})
	require.NoError(t, err)
	assert.Empty(t, store.Snapshot().Machines)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	boom := errors.New("boom")

	err := store.RunInTransaction(ctx, func(tx *Tx) error {
		if _, err := tx.Batches().Create(models.Batch{Lot: "A", QtyReceived: 10}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, store.Snapshot().Batches)

	// identifiers are not consumed by a discarded transaction
	err = store.RunInTransaction(ctx, func(tx *Tx) error {
		b, err := tx.Batches().Create(models.Batch{Lot: "B"})
		assert.Equal(t, int64(1), b.ID)
		return err
	})
	require.NoError(t, err)
}

func TestViewIsReadOnly(t *testing.T) {
	store := NewStore(nil)
	err := store.View(context.Background(), func(tx *Tx) error {
		_, err := tx.Batches().Create(models.Batch{Lot: "A"})
		return err
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestFindOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	require.NoError(t, store.RunInTransaction(ctx, func(tx *Tx) error {
		for _, qty := range []int{5, 30, 10} {
			if _, err := tx.Selections().Create(models.SelectionLine{BatchID: 1, Quantity: qty}); err != nil {
				return err
			}
		}
		_, err := tx.Selections().Create(models.SelectionLine{BatchID: 2, Quantity: 99})
		return err
	}))

	require.NoError(t, store.View(ctx, func(tx *Tx) error {
		match := func(l models.SelectionLine) bool { return l.BatchID == 1 }

		asc := tx.Selections().Find(match, nil)
		require.Len(t, asc, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{asc[0].ID, asc[1].ID, asc[2].ID})

		desc := tx.Selections().Find(match, ByIDDesc[models.SelectionLine]())
		assert.Equal(t, int64(3), desc[0].ID)

		byQty := tx.Selections().Find(match, func(a, b models.SelectionLine) bool { return a.Quantity > b.Quantity })
		assert.Equal(t, []int{30, 10, 5}, []int{byQty[0].Quantity, byQty[1].Quantity, byQty[2].Quantity})

		assert.Equal(t, 4, tx.Selections().Count(nil))
		return nil
	}))
}

func TestPersisterFailureDiscardsTransaction(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{}
	store, err := Open(ctx, persister, nil)
	require.NoError(t, err)

	persister.err = errors.New("disk full")
	err = store.RunInTransaction(ctx, func(tx *Tx) error {
		_, err := tx.Batches().Create(models.Batch{Lot: "A"})
		return err
	})
	require.Error(t, err)
	assert.Empty(t, store.Snapshot().Batches)
	assert.Zero(t, persister.saves)
}

func TestOpenHydratesFromPersister(t *testing.T) {
	ctx := context.Background()
	persister := &recordingPersister{}
	store, err := Open(ctx, persister, nil)
	require.NoError(t, err)
	require.NoError(t, store.RunInTransaction(ctx, func(tx *Tx) error {
		_, err := tx.Batches().Create(models.Batch{Lot: "A", QtyReceived: 10})
		return err
	}))
	require.Equal(t, 1, persister.saves)

	// round trip through the encoded payload form persisters use
	payloads, err := persister.snap.Encode()
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(payloads)
	require.NoError(t, err)

	reopened, err := Open(ctx, &recordingPersister{snap: decoded}, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.RunInTransaction(ctx, func(tx *Tx) error {
		b, err := tx.Batches().Create(models.Batch{Lot: "B"})
		assert.Equal(t, int64(2), b.ID)
		return err
	}))
	snap := reopened.Snapshot()
	require.Len(t, snap.Batches, 2)
	assert.Equal(t, "A", snap.Batches[0].Lot)
}

func TestDecodeSnapshotIgnoresUnknownBuckets(t *testing.T) {
	snap, err := DecodeSnapshot(map[string][]byte{
		"legacy":   []byte(`{"x":1}`),
		"machines": []byte(`[{"id":3,"name":"H","kind":"hatcher","capacity":10}]`),
	})
	require.NoError(t, err)
	require.Len(t, snap.Machines, 1)
	assert.Equal(t, models.MachineHatcher, snap.Machines[0].Kind)
}
