package allocation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

func pool(capacities ...int) []models.Machine {
	out := make([]models.Machine, 0, len(capacities))
	for i, c := range capacities {
		out = append(out, models.Machine{ID: int64(i + 1), Kind: models.MachineSetter, Capacity: c})
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		machines   []models.Machine
		wantShares []int
		wantRest   int
	}{
		{name: "fits one machine", total: 500, machines: pool(1000, 1000), wantShares: []int{500}},
		{name: "spills over", total: 250000, machines: pool(100000, 100000, 100000), wantShares: []int{100000, 100000, 50000}},
		{name: "skips zero capacity", total: 150, machines: pool(0, 100, 100), wantShares: []int{100, 50}},
		{name: "exhausted", total: 750000, machines: pool(100000, 100000, 100000, 100000, 100000, 100000, 100000), wantShares: []int{100000, 100000, 100000, 100000, 100000, 100000, 100000}, wantRest: 50000},
		{name: "empty pool", total: 10, machines: nil, wantRest: 10},
		{name: "zero total", total: 0, machines: pool(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Allocate(tt.total, tt.machines)
			var shares []int
			for _, a := range res.Assignments {
				assert.LessOrEqual(t, a.Quantity, a.Machine.Capacity)
				shares = append(shares, a.Quantity)
			}
			assert.Equal(t, tt.wantShares, shares)
			assert.Equal(t, tt.wantRest, res.Remainder)

			capacity := 0
			for _, m := range tt.machines {
				capacity += m.Capacity
			}
			assert.Equal(t, min(tt.total, capacity), res.Assigned())
		})
	}
}

func TestAllocateOrdersByID(t *testing.T) {
	machines := []models.Machine{{ID: 3, Capacity: 10}, {ID: 1, Capacity: 10}, {ID: 2, Capacity: 10}}
	res := Allocate(15, machines)
	require.Len(t, res.Assignments, 2)
	assert.Equal(t, int64(1), res.Assignments[0].Machine.ID)
	assert.Equal(t, int64(2), res.Assignments[1].Machine.ID)
	assert.Equal(t, int64(3), machines[0].ID)
}

func TestFirstFit(t *testing.T) {
	machines := []models.Machine{{ID: 2, Capacity: 200}, {ID: 1, Capacity: 50}, {ID: 3, Capacity: 500}}

	m, err := FirstFit(100, machines)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.ID)

	_, err = FirstFit(1000, machines)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCapacityExhausted))
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestCapacityError(t *testing.T) {
	err := CapacityError(models.MachineSetter, 750000, 50000)
	assert.ErrorIs(t, err, models.ErrCapacityExhausted)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "50000 left unassigned")
}

func TestDefaultPoolMachines(t *testing.T) {
	got := DefaultPool{Kind: models.MachineHatcher, Count: 2, Capacity: 100000}.Machines()
	require.Len(t, got, 2)
	assert.Equal(t, "Hatcher 2", got[1].Name)
	assert.Equal(t, 100000, got[0].Capacity)
}
