package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "hatchery.db")

	persister, err := Open(ctx, path, nil)
	require.NoError(t, err)

	store, err := memory.Open(ctx, persister, nil)
	require.NoError(t, err)
	require.NoError(t, store.RunInTransaction(ctx, func(tx *memory.Tx) error {
		if _, err := tx.Machines().Create(models.Machine{Name: "Setter 1", Kind: models.MachineSetter, Capacity: 100000}); err != nil {
			return err
		}
		_, err := tx.Batches().Create(models.Batch{Lot: "BATCH-00001", QtyReceived: 500, Status: models.BatchDraft})
		return err
	}))
	require.NoError(t, persister.Close())

	reopened, err := Open(ctx, path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	snap, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Machines, 1)
	require.Len(t, snap.Batches, 1)
	assert.Equal(t, 500, snap.Batches[0].QtyReceived)
	assert.Equal(t, int64(1), snap.Sequences["batches"])

	var rows int
	require.NoError(t, reopened.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM pipeline_state`).Scan(&rows))
	assert.Equal(t, len(memory.Buckets), rows)
}

func TestLoadEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	persister, err := Open(ctx, filepath.Join(t.TempDir(), "empty.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = persister.Close() })

	snap, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Batches)
}
