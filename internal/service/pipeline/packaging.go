package pipeline

import (
	"context"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

// GetPackaging returns one packaging unit.
func (s *Service) GetPackaging(ctx context.Context, id int64) (models.PackagingUnit, error) {
	var unit models.PackagingUnit
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		var err error
		unit, err = tx.Packaging().Get(id)
		return err
	})
	return unit, err
}

// RecordPackagingMortality sets the chicks lost while boxing a draft unit.
func (s *Service) RecordPackagingMortality(ctx context.Context, id int64, mortality int) (models.PackagingUnit, error) {
	var unit models.PackagingUnit
	err := s.run(ctx, "record_packaging_mortality", func(tx *memory.Tx, out *outbox) error {
		var err error
		unit, err = tx.Packaging().Get(id)
		if err != nil {
			return err
		}
		if unit.Status != models.PackagingDraft {
			return models.Validationf("packaging unit %d is %s, mortality can only be recorded on drafts", id, unit.Status)
		}
		if mortality < 0 || mortality > unit.ChicksCount {
			return models.Validationf("packaging mortality %d must be between 0 and the %d chicks", mortality, unit.ChicksCount)
		}
		unit.PackagingMortality = mortality
		if err := tx.Packaging().Update(unit); err != nil {
			return err
		}
		out.add(packagingEntity(id), "packaging mortality recorded: %d", mortality)
		return nil
	})
	return unit, err
}

// ReadyForTransfer closes packaging and opens a draft transfer for the
// surviving chicks. When none survive no transfer is created and a nil
// transfer is returned.
func (s *Service) ReadyForTransfer(ctx context.Context, id int64) (*models.Transfer, error) {
	var transfer *models.Transfer
	err := s.run(ctx, "ready_for_transfer", func(tx *memory.Tx, out *outbox) error {
		transfer = nil
		unit, err := tx.Packaging().Get(id)
		if err != nil {
			return err
		}
		if unit.Status != models.PackagingDraft {
			return models.Validationf("packaging unit %d is %s, only drafts can be readied for transfer", id, unit.Status)
		}

		qty := unit.ChicksCount - unit.PackagingMortality
		unit.Status = models.PackagingReadyForTransfer
		if err := tx.Packaging().Update(unit); err != nil {
			return err
		}
		if qty <= 0 {
			out.add(packagingEntity(id), "no chicks left to transfer after packaging mortality")
			return nil
		}
		if err := checkConserved("ready for transfer", unit.ChicksCount, qty); err != nil {
			return err
		}

		created, err := tx.Transfers().Create(models.Transfer{
			PackagingID: unit.ID,
			BatchID:     unit.BatchID,
			ChicksCount: qty,
			Source:      s.opts.SourceLocation,
			Destination: s.opts.DestinationLocation,
			Date:        s.now(),
			Status:      models.TransferDraft,
		})
		if err != nil {
			return err
		}
		transfer = &created
		out.add(packagingEntity(id), "transfer %d drafted for %d chicks", created.ID, qty)
		return nil
	})
	return transfer, err
}

// PackagingDone closes a unit that was readied for transfer.
func (s *Service) PackagingDone(ctx context.Context, id int64) (models.PackagingUnit, error) {
	var unit models.PackagingUnit
	err := s.run(ctx, "packaging_done", func(tx *memory.Tx, out *outbox) error {
		var err error
		unit, err = tx.Packaging().Get(id)
		if err != nil {
			return err
		}
		if unit.Status != models.PackagingReadyForTransfer {
			return models.Validationf("packaging unit %d is %s, only units ready for transfer can be closed", id, unit.Status)
		}
		unit.Status = models.PackagingDone
		if err := tx.Packaging().Update(unit); err != nil {
			return err
		}
		out.add(packagingEntity(id), "packaging done")
		return nil
	})
	return unit, err
}
