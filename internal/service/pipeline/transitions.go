package pipeline

import (
	"context"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/service/allocation"
	"github.com/mamadbah2/hatchery/internal/service/snapshot"
)

func machinesOf(tx *memory.Tx, kind models.MachineKind) []models.Machine {
	return tx.Machines().Find(func(m models.Machine) bool { return m.Kind == kind }, nil)
}

func stagesOf(tx *memory.Tx, batchID int64, kind models.MachineKind) []models.StageEntry {
	return tx.Stages().Find(func(e models.StageEntry) bool {
		return e.BatchID == batchID && e.Kind == kind
	}, nil)
}

// SendToSetter spreads the received quantity over the setter pool, one stage
// entry per machine used. A pool too small for the batch rejects the whole
// operation.
func (s *Service) SendToSetter(ctx context.Context, batchID int64) ([]models.StageEntry, error) {
	var entries []models.StageEntry
	err := s.run(ctx, "send_to_setter", func(tx *memory.Tx, out *outbox) error {
		entries = nil
		batch, err := tx.Batches().Get(batchID)
		if err != nil {
			return err
		}
		if batch.Status != models.BatchDraft {
			return models.Validationf("batch %s is %s, only draft batches can be sent to the setter", batch.Lot, batch.Status)
		}
		if batch.QtyReceived <= 0 {
			return models.Validationf("batch %s has no eggs to load", batch.Lot)
		}

		setters := machinesOf(tx, models.MachineSetter)
		if len(setters) == 0 {
			return models.Configurationf("no setter machines configured")
		}
		res := allocation.Allocate(batch.QtyReceived, setters)
		if res.Remainder > 0 {
			return allocation.CapacityError(models.MachineSetter, batch.QtyReceived, res.Remainder)
		}

		now := s.now()
		for _, a := range res.Assignments {
			entry, err := tx.Stages().Create(models.StageEntry{
				Kind:           models.MachineSetter,
				BatchID:        batch.ID,
				MachineID:      a.Machine.ID,
				QuantityLoaded: a.Quantity,
				Status:         models.StageInStage,
				StartedAt:      now,
			})
			if err != nil {
				return err
			}
			if _, err := snapshot.Propagate(tx, models.BatchOwner(batch.ID), models.StageOwner(entry.ID)); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		if err := checkConserved("send to setter", batch.QtyReceived, models.ConservedQuantity(entries)); err != nil {
			return err
		}

		batch.Status = models.BatchInSetter
		if err := tx.Batches().Update(batch); err != nil {
			return err
		}
		out.add(batchEntity(batch.ID), "%d eggs sent to setter across %d machines", batch.QtyReceived, len(entries))
		return nil
	})
	return entries, err
}

// MoveToHatcher merges every setter entry of the batch into one hatcher entry
// loaded with the setter total minus mortality.
func (s *Service) MoveToHatcher(ctx context.Context, batchID int64, mortality int) (models.StageEntry, error) {
	var hatcher models.StageEntry
	err := s.run(ctx, "move_to_hatcher", func(tx *memory.Tx, out *outbox) error {
		batch, err := tx.Batches().Get(batchID)
		if err != nil {
			return err
		}
		if batch.Status != models.BatchInSetter {
			return models.Validationf("batch %s is %s, only batches in setter can move to the hatcher", batch.Lot, batch.Status)
		}

		setters := stagesOf(tx, batchID, models.MachineSetter)
		if len(setters) == 0 {
			return models.Consistencyf("batch %s has no setter entries", batch.Lot)
		}
		total := 0
		for _, e := range setters {
			if e.Status != models.StageInStage {
				return models.Consistencyf("setter entry %d already left the setter (%s)", e.ID, e.Status)
			}
			total += e.QuantityLoaded
		}
		if mortality < 0 || mortality > total {
			return models.Validationf("mortality %d must be between 0 and the %d eggs in the setter", mortality, total)
		}

		loaded := total - mortality
		machine, err := allocation.FirstFit(loaded, machinesOf(tx, models.MachineHatcher))
		if err != nil {
			if len(machinesOf(tx, models.MachineHatcher)) == 0 {
				return models.Configurationf("no hatcher machines configured")
			}
			return err
		}

		now := s.now()
		hatcher, err = tx.Stages().Create(models.StageEntry{
			Kind:           models.MachineHatcher,
			BatchID:        batchID,
			MachineID:      machine.ID,
			QuantityLoaded: loaded,
			Mortality:      mortality,
			Status:         models.StageInStage,
			StartedAt:      now,
		})
		if err != nil {
			return err
		}
		if err := checkConserved("move to hatcher", models.ConservedQuantity(setters), hatcher.Surviving()); err != nil {
			return err
		}
		owners := []models.OwnerRef{models.BatchOwner(batchID)}
		for _, e := range setters {
			owners = append(owners, models.StageOwner(e.ID))
		}
		if _, err := snapshot.Merge(tx, owners, models.StageOwner(hatcher.ID)); err != nil {
			return err
		}
		for _, e := range setters {
			e.Status = models.StageReadyForNext
			e.EndedAt = &now
			if err := tx.Stages().Update(e); err != nil {
				return err
			}
		}

		batch.Status = models.BatchInHatcher
		if err := tx.Batches().Update(batch); err != nil {
			return err
		}
		out.add(batchEntity(batchID), "moved to hatcher %s: %d eggs loaded, %d lost in setter", machine.Name, loaded, mortality)
		return nil
	})
	return hatcher, err
}

// BatchDone closes a batch that reached the hatcher.
func (s *Service) BatchDone(ctx context.Context, batchID int64) (models.Batch, error) {
	var batch models.Batch
	err := s.run(ctx, "batch_done", func(tx *memory.Tx, out *outbox) error {
		var err error
		batch, err = tx.Batches().Get(batchID)
		if err != nil {
			return err
		}
		if batch.Status != models.BatchInHatcher {
			return models.Validationf("batch %s is %s, only batches in hatcher can be closed", batch.Lot, batch.Status)
		}
		batch.Status = models.BatchDone
		if err := tx.Batches().Update(batch); err != nil {
			return err
		}
		out.add(batchEntity(batchID), "batch closed")
		return nil
	})
	return batch, err
}
