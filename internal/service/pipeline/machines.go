package pipeline

import (
	"context"
	"strings"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

// ListMachines returns the machines of kind, or all when kind is empty.
func (s *Service) ListMachines(ctx context.Context, kind models.MachineKind) ([]models.Machine, error) {
	var out []models.Machine
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		out = tx.Machines().Find(func(m models.Machine) bool { return kind == "" || m.Kind == kind }, nil)
		return nil
	})
	return out, err
}

// CreateMachine adds a machine to a pool.
func (s *Service) CreateMachine(ctx context.Context, name string, kind models.MachineKind, capacity int) (models.Machine, error) {
	var machine models.Machine
	err := s.run(ctx, "create_machine", func(tx *memory.Tx, _ *outbox) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return models.Validationf("machine name is required")
		}
		if kind != models.MachineSetter && kind != models.MachineHatcher {
			return models.Validationf("unknown machine kind %q", kind)
		}
		if capacity < 0 {
			return models.Validationf("capacity cannot be negative, got %d", capacity)
		}
		var err error
		machine, err = tx.Machines().Create(models.Machine{Name: name, Kind: kind, Capacity: capacity})
		return err
	})
	return machine, err
}

// UpdateMachineCapacity changes the capacity of a machine no stage entry
// references yet.
func (s *Service) UpdateMachineCapacity(ctx context.Context, id int64, capacity int) (models.Machine, error) {
	var machine models.Machine
	err := s.run(ctx, "update_machine_capacity", func(tx *memory.Tx, _ *outbox) error {
		if capacity < 0 {
			return models.Validationf("capacity cannot be negative, got %d", capacity)
		}
		var err error
		machine, err = tx.Machines().Get(id)
		if err != nil {
			return err
		}
		if n := tx.Stages().Count(func(e models.StageEntry) bool { return e.MachineID == id }); n > 0 {
			return models.Consistencyf("machine %s is referenced by %d stage entries", machine.Name, n)
		}
		machine.Capacity = capacity
		return tx.Machines().Update(machine)
	})
	return machine, err
}
