package pipeline

import (
	"context"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/service/allocation"
	"github.com/mamadbah2/hatchery/internal/service/snapshot"
)

// StageDetail is a stage entry with its machine and observations.
type StageDetail struct {
	Stage        models.StageEntry `json:"stage"`
	Machine      models.Machine    `json:"machine"`
	SuccessRate  float64           `json:"success_rate"`
	Observations Observations      `json:"observations"`
}

// GetStage returns one stage entry.
func (s *Service) GetStage(ctx context.Context, id int64) (StageDetail, error) {
	var detail StageDetail
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		entry, err := tx.Stages().Get(id)
		if err != nil {
			return err
		}
		machine, err := tx.Machines().Get(entry.MachineID)
		if err != nil {
			return err
		}
		detail = StageDetail{
			Stage:        entry,
			Machine:      machine,
			SuccessRate:  entry.SuccessRate(),
			Observations: observationsOf(tx, models.StageOwner(id)),
		}
		return nil
	})
	return detail, err
}

// RecordStageMortality sets the mortality of an entry still in its stage.
func (s *Service) RecordStageMortality(ctx context.Context, id int64, mortality int) (models.StageEntry, error) {
	var entry models.StageEntry
	err := s.run(ctx, "record_stage_mortality", func(tx *memory.Tx, out *outbox) error {
		var err error
		entry, err = tx.Stages().Get(id)
		if err != nil {
			return err
		}
		if entry.Status != models.StageInStage {
			return models.Validationf("stage entry %d is %s, mortality can only be recorded in stage", id, entry.Status)
		}
		if mortality < 0 || mortality > entry.QuantityLoaded {
			return models.Validationf("mortality %d must be between 0 and the %d loaded", mortality, entry.QuantityLoaded)
		}
		entry.Mortality = mortality
		if err := tx.Stages().Update(entry); err != nil {
			return err
		}
		out.add(stageEntity(id), "mortality recorded: %d, success rate %.1f%%", mortality, entry.SuccessRate())
		return nil
	})
	return entry, err
}

// MoveStageToHatcher sends the survivors of one setter entry to a hatcher.
func (s *Service) MoveStageToHatcher(ctx context.Context, id int64) (models.StageEntry, error) {
	var hatcher models.StageEntry
	err := s.run(ctx, "move_stage_to_hatcher", func(tx *memory.Tx, out *outbox) error {
		setter, err := tx.Stages().Get(id)
		if err != nil {
			return err
		}
		if setter.Kind != models.MachineSetter {
			return models.Validationf("stage entry %d is a %s entry, not a setter entry", id, setter.Kind)
		}
		if setter.Status != models.StageInStage {
			return models.Validationf("setter entry %d is %s, only entries in stage can move", id, setter.Status)
		}

		hatchers := machinesOf(tx, models.MachineHatcher)
		if len(hatchers) == 0 {
			return models.Configurationf("no hatcher machines configured")
		}
		loaded := setter.Surviving()
		machine, err := allocation.FirstFit(loaded, hatchers)
		if err != nil {
			return err
		}

		now := s.now()
		hatcher, err = tx.Stages().Create(models.StageEntry{
			Kind:           models.MachineHatcher,
			BatchID:        setter.BatchID,
			PredecessorID:  setter.ID,
			MachineID:      machine.ID,
			QuantityLoaded: loaded,
			Mortality:      setter.Mortality,
			Status:         models.StageInStage,
			StartedAt:      now,
		})
		if err != nil {
			return err
		}
		if err := checkConserved("move stage to hatcher", setter.Surviving(), hatcher.Surviving()); err != nil {
			return err
		}
		if _, err := snapshot.Propagate(tx, models.StageOwner(setter.ID), models.StageOwner(hatcher.ID)); err != nil {
			return err
		}

		setter.Status = models.StageReadyForNext
		setter.EndedAt = &now
		if err := tx.Stages().Update(setter); err != nil {
			return err
		}
		if err := s.advanceBatchToHatcher(tx, setter.BatchID); err != nil {
			return err
		}
		out.add(stageEntity(setter.ID), "moved to hatcher %s: %d eggs, success rate %.1f%%", machine.Name, loaded, setter.SuccessRate())
		return nil
	})
	return hatcher, err
}

// advanceBatchToHatcher flips a batch to InHatcher once none of its setter
// entries is left in stage.
func (s *Service) advanceBatchToHatcher(tx *memory.Tx, batchID int64) error {
	batch, err := tx.Batches().Get(batchID)
	if err != nil {
		return err
	}
	if batch.Status != models.BatchInSetter {
		return nil
	}
	for _, e := range stagesOf(tx, batchID, models.MachineSetter) {
		if e.Status == models.StageInStage {
			return nil
		}
	}
	batch.Status = models.BatchInHatcher
	return tx.Batches().Update(batch)
}

// MoveToPackaging boxes the chicks hatched by one hatcher entry.
func (s *Service) MoveToPackaging(ctx context.Context, id int64) (models.PackagingUnit, error) {
	var unit models.PackagingUnit
	err := s.run(ctx, "move_to_packaging", func(tx *memory.Tx, out *outbox) error {
		entry, err := tx.Stages().Get(id)
		if err != nil {
			return err
		}
		if entry.Kind != models.MachineHatcher {
			return models.Validationf("stage entry %d is a %s entry, not a hatcher entry", id, entry.Kind)
		}
		if entry.Status != models.StageInStage {
			return models.Validationf("hatcher entry %d is %s, only entries in stage can be packaged", id, entry.Status)
		}
		chicks := entry.Surviving()
		if chicks < 0 {
			return models.Consistencyf("hatcher entry %d has more mortality than eggs loaded", id)
		}

		now := s.now()
		unit, err = tx.Packaging().Create(models.PackagingUnit{
			HatcherStageID: entry.ID,
			BatchID:        entry.BatchID,
			ChicksCount:    chicks,
			Status:         models.PackagingDraft,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}
		entry.Status = models.StageReadyForNext
		entry.EndedAt = &now
		if err := tx.Stages().Update(entry); err != nil {
			return err
		}
		out.add(stageEntity(id), "%d chicks moved to packaging in %d boxes", chicks, unit.Boxes())
		return nil
	})
	return unit, err
}

// StageDone closes an entry whose successor was created.
func (s *Service) StageDone(ctx context.Context, id int64) (models.StageEntry, error) {
	var entry models.StageEntry
	err := s.run(ctx, "stage_done", func(tx *memory.Tx, out *outbox) error {
		var err error
		entry, err = tx.Stages().Get(id)
		if err != nil {
			return err
		}
		if entry.Status != models.StageReadyForNext {
			return models.Validationf("stage entry %d is %s, only entries ready for next can be closed", id, entry.Status)
		}
		entry.Status = models.StageDone
		if entry.EndedAt == nil {
			now := s.now()
			entry.EndedAt = &now
		}
		if err := tx.Stages().Update(entry); err != nil {
			return err
		}
		out.add(stageEntity(id), "%s stage done", entry.Kind)
		return nil
	})
	return entry, err
}
