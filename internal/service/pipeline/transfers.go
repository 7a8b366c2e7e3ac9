package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

// GetTransfer returns one transfer.
func (s *Service) GetTransfer(ctx context.Context, id int64) (models.Transfer, error) {
	var transfer models.Transfer
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		var err error
		transfer, err = tx.Transfers().Get(id)
		return err
	})
	return transfer, err
}

// SetTransferLocations changes the locations of a draft transfer.
func (s *Service) SetTransferLocations(ctx context.Context, id int64, source, destination string) (models.Transfer, error) {
	var transfer models.Transfer
	err := s.run(ctx, "set_transfer_locations", func(tx *memory.Tx, _ *outbox) error {
		var err error
		transfer, err = tx.Transfers().Get(id)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferDraft {
			return models.Validationf("transfer %d is %s, locations can only change on drafts", id, transfer.Status)
		}
		transfer.Source = strings.TrimSpace(source)
		transfer.Destination = strings.TrimSpace(destination)
		return tx.Transfers().Update(transfer)
	})
	return transfer, err
}

// TransferDone books a draft transfer as an internal movement in the stock
// ledger and keeps the returned picking link.
func (s *Service) TransferDone(ctx context.Context, id int64) (models.Transfer, error) {
	var transfer models.Transfer
	err := s.run(ctx, "transfer_done", func(tx *memory.Tx, out *outbox) error {
		var err error
		transfer, err = tx.Transfers().Get(id)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferDraft {
			return models.Validationf("transfer %d is %s, only drafts can be completed", id, transfer.Status)
		}
		if transfer.ChicksCount <= 0 {
			return models.Validationf("transfer %d has no chicks", id)
		}
		if s.refs.ChicksProductID == "" {
			return models.Configurationf("chicks product is not available in the stock ledger")
		}
		if s.refs.InternalPickingTypeID == "" {
			return models.Configurationf("internal picking type is not available in the stock ledger")
		}
		if transfer.Source == "" || transfer.Destination == "" {
			return models.Validationf("transfer %d needs both source and destination locations", id)
		}

		pickingID, err := s.ledger.CreateMovement(ctx, models.MovementRequest{
			ProductID:     s.refs.ChicksProductID,
			PickingTypeID: s.refs.InternalPickingTypeID,
			Source:        transfer.Source,
			Destination:   transfer.Destination,
			Quantity:      transfer.ChicksCount,
			ScheduledDate: transfer.Date,
			Origin:        transferEntity(id),
		})
		if err != nil {
			return fmt.Errorf("create chick movement: %w", err)
		}

		transfer.PickingID = pickingID
		transfer.Status = models.TransferDone
		if err := tx.Transfers().Update(transfer); err != nil {
			return err
		}
		out.add(transferEntity(id), "movement %s created for %d chicks from %s to %s",
			pickingID, transfer.ChicksCount, transfer.Source, transfer.Destination)
		return nil
	})
	return transfer, err
}

// TransferDelivered validates the linked movement and marks the transfer
// delivered.
func (s *Service) TransferDelivered(ctx context.Context, id int64) (models.Transfer, error) {
	var transfer models.Transfer
	err := s.run(ctx, "transfer_delivered", func(tx *memory.Tx, out *outbox) error {
		var err error
		transfer, err = tx.Transfers().Get(id)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferDone {
			return models.Validationf("transfer %d is %s, only done transfers can be delivered", id, transfer.Status)
		}
		if transfer.PickingID == "" {
			return models.Consistencyf("transfer %d has no linked movement", id)
		}
		if err := s.ledger.ValidateMovement(ctx, transfer.PickingID); err != nil {
			return fmt.Errorf("validate movement %s: %w", transfer.PickingID, err)
		}
		transfer.Status = models.TransferDelivered
		if err := tx.Transfers().Update(transfer); err != nil {
			return err
		}
		out.add(transferEntity(id), "%d chicks delivered", transfer.ChicksCount)
		return nil
	})
	if err == nil {
		s.metrics.Transferred(transfer.ChicksCount)
	}
	return transfer, err
}
