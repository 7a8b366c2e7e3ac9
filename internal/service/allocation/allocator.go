// Package allocation splits quantities across capacity-bounded machine pools.
package allocation

import (
	"fmt"
	"sort"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// Assignment is the share of a quantity placed on one machine.
type Assignment struct {
	Machine  models.Machine
	Quantity int
}

// Result is the outcome of Allocate.
type Result struct {
	Assignments []Assignment
	Remainder   int
}

// Assigned sums the quantity placed on machines.
func (r Result) Assigned() int {
	total := 0
	for _, a := range r.Assignments {
		total += a.Quantity
	}
	return total
}

// Allocate fills machines in ascending id order, each up to its capacity,
// until total is placed or the pool runs out. Machines with no capacity are
// skipped; only non-zero shares are returned.
func Allocate(total int, machines []models.Machine) Result {
	pool := make([]models.Machine, len(machines))
	copy(pool, machines)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	remaining := total
	var out []Assignment
	for _, m := range pool {
		if remaining <= 0 {
			break
		}
		if m.Capacity <= 0 {
			continue
		}
		qty := min(remaining, m.Capacity)
		out = append(out, Assignment{Machine: m, Quantity: qty})
		remaining -= qty
	}
	return Result{Assignments: out, Remainder: max(remaining, 0)}
}

// FirstFit returns the lowest-id machine able to hold quantity on its own.
func FirstFit(quantity int, machines []models.Machine) (models.Machine, error) {
	pool := make([]models.Machine, len(machines))
	copy(pool, machines)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	for _, m := range pool {
		if m.Capacity >= quantity && m.Capacity > 0 {
			return m, nil
		}
	}
	return models.Machine{}, fmt.Errorf("%w: %w: no machine holds %d units", models.ErrValidation, models.ErrCapacityExhausted, quantity)
}

// CapacityError reports a remainder the pool could not absorb.
func CapacityError(kind models.MachineKind, requested, remainder int) error {
	return fmt.Errorf("%w: %w: %s pool cannot absorb %d units, %d left unassigned",
		models.ErrValidation, models.ErrCapacityExhausted, kind, requested, remainder)
}

// DefaultPool describes machines to create for a kind that has none.
type DefaultPool struct {
	Kind     models.MachineKind
	Count    int
	Capacity int
}

// Machines renders the named machines of the pool.
func (p DefaultPool) Machines() []models.Machine {
	out := make([]models.Machine, 0, p.Count)
	label := "Setter"
	if p.Kind == models.MachineHatcher {
		label = "Hatcher"
	}
	for i := 1; i <= p.Count; i++ {
		out = append(out, models.Machine{
			Name:     fmt.Sprintf("%s %d", label, i),
			Kind:     p.Kind,
			Capacity: p.Capacity,
		})
	}
	return out
}
