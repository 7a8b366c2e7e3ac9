package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/service/snapshot"
)

const newLotPlaceholder = "New"

// NewBatch is the input of CreateBatch.
type NewBatch struct {
	Lot              string
	QuantityReceived int
	DateReceived     time.Time
	PreStorageWaste  int
	Notes            string
}

// Receipt is a validated inbound receipt carrying eggs.
type Receipt struct {
	Reference string
	Quantity  int
	Date      time.Time
}

// BatchDetail is a batch with everything it owns.
type BatchDetail struct {
	Batch      models.Batch               `json:"batch"`
	Stages     []models.StageEntry        `json:"stages"`
	Selections []models.SelectionLine     `json:"selections"`
	Breaks     []models.BreakHistoryEntry `json:"breaks"`
	Packaging  []models.PackagingUnit     `json:"packaging"`
	Transfers  []models.Transfer          `json:"transfers"`
}

// CreateBatch registers a Draft batch. An empty or "New" lot gets a generated
// label.
func (s *Service) CreateBatch(ctx context.Context, in NewBatch) (models.Batch, error) {
	var batch models.Batch
	err := s.run(ctx, "create_batch", func(tx *memory.Tx, out *outbox) error {
		var err error
		batch, err = s.createBatch(tx, in, "")
		if err != nil {
			return err
		}
		out.add(batchEntity(batch.ID), "batch %s received with %d eggs", batch.Lot, batch.QtyReceived)
		return nil
	})
	return batch, err
}

// ReceiveFromPicking creates one batch per receipt reference. A repeated
// reference returns the existing batch with created=false.
func (s *Service) ReceiveFromPicking(ctx context.Context, r Receipt) (batch models.Batch, created bool, err error) {
	ref := strings.TrimSpace(r.Reference)
	err = s.run(ctx, "receive_receipt", func(tx *memory.Tx, out *outbox) error {
		created = false
		if ref == "" {
			return models.Validationf("receipt reference is required")
		}
		existing := tx.Batches().Find(func(b models.Batch) bool { return b.ReceiptReference == ref }, nil)
		if len(existing) > 0 {
			batch = existing[0]
			return nil
		}
		var err error
		batch, err = s.createBatch(tx, NewBatch{QuantityReceived: r.Quantity, DateReceived: r.Date}, ref)
		if err != nil {
			return err
		}
		created = true
		out.add(batchEntity(batch.ID), "batch %s created from receipt %s with %d eggs", batch.Lot, ref, batch.QtyReceived)
		return nil
	})
	return batch, created, err
}

func (s *Service) createBatch(tx *memory.Tx, in NewBatch, receiptRef string) (models.Batch, error) {
	if in.QuantityReceived <= 0 {
		return models.Batch{}, models.Validationf("quantity received must be positive, got %d", in.QuantityReceived)
	}
	if in.PreStorageWaste < 0 {
		return models.Batch{}, models.Validationf("pre-storage waste cannot be negative, got %d", in.PreStorageWaste)
	}
	now := s.now()
	date := in.DateReceived
	if date.IsZero() {
		date = now
	}
	lot := strings.TrimSpace(in.Lot)

	batch, err := tx.Batches().Create(models.Batch{
		Lot:              lot,
		DateReceived:     date,
		QtyReceived:      in.QuantityReceived,
		PreStorageWaste:  in.PreStorageWaste,
		Notes:            in.Notes,
		ReceiptReference: receiptRef,
		Status:           models.BatchDraft,
		CreatedAt:        now,
	})
	if err != nil {
		return models.Batch{}, err
	}
	if lot == "" || lot == newLotPlaceholder {
		batch.Lot = fmt.Sprintf("BATCH-%05d", batch.ID)
		if err := tx.Batches().Update(batch); err != nil {
			return models.Batch{}, err
		}
	}
	return batch, nil
}

// ListBatches returns every batch, newest first.
func (s *Service) ListBatches(ctx context.Context) ([]models.Batch, error) {
	var out []models.Batch
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		out = tx.Batches().Find(nil, memory.ByIDDesc[models.Batch]())
		return nil
	})
	return out, err
}

// GetBatch returns a batch and the records it owns.
func (s *Service) GetBatch(ctx context.Context, id int64) (BatchDetail, error) {
	var detail BatchDetail
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		batch, err := tx.Batches().Get(id)
		if err != nil {
			return err
		}
		detail = BatchDetail{
			Batch:      batch,
			Stages:     tx.Stages().Find(func(e models.StageEntry) bool { return e.BatchID == id }, nil),
			Selections: tx.Selections().Find(func(l models.SelectionLine) bool { return l.BatchID == id }, nil),
			Breaks:     tx.Breaks().Find(func(e models.BreakHistoryEntry) bool { return e.BatchID == id }, nil),
			Packaging:  tx.Packaging().Find(func(p models.PackagingUnit) bool { return p.BatchID == id }, nil),
			Transfers:  tx.Transfers().Find(func(t models.Transfer) bool { return t.BatchID == id }, nil),
		}
		return nil
	})
	return detail, err
}

// DeleteBatch removes a batch and, in cascade, its stage entries, packaging
// units, transfers, selection lines, break history and observations.
func (s *Service) DeleteBatch(ctx context.Context, id int64) error {
	return s.run(ctx, "delete_batch", func(tx *memory.Tx, out *outbox) error {
		batch, err := tx.Batches().Get(id)
		if err != nil {
			return err
		}
		for _, t := range tx.Transfers().Find(func(t models.Transfer) bool { return t.BatchID == id }, nil) {
			if err := tx.Transfers().Delete(t.ID); err != nil {
				return err
			}
		}
		for _, p := range tx.Packaging().Find(func(p models.PackagingUnit) bool { return p.BatchID == id }, nil) {
			if err := tx.Packaging().Delete(p.ID); err != nil {
				return err
			}
		}
		for _, e := range tx.Stages().Find(func(e models.StageEntry) bool { return e.BatchID == id }, nil) {
			if err := snapshot.DeleteOwned(tx, models.StageOwner(e.ID)); err != nil {
				return err
			}
			if err := tx.Stages().Delete(e.ID); err != nil {
				return err
			}
		}
		for _, l := range tx.Selections().Find(func(l models.SelectionLine) bool { return l.BatchID == id }, nil) {
			if err := tx.Selections().Delete(l.ID); err != nil {
				return err
			}
		}
		for _, e := range tx.Breaks().Find(func(e models.BreakHistoryEntry) bool { return e.BatchID == id }, nil) {
			if err := tx.Breaks().Delete(e.ID); err != nil {
				return err
			}
		}
		if err := snapshot.DeleteOwned(tx, models.BatchOwner(id)); err != nil {
			return err
		}
		if err := tx.Batches().Delete(id); err != nil {
			return err
		}
		out.add(batchEntity(id), "batch %s deleted", batch.Lot)
		return nil
	})
}

// DeliverEggs records eggs leaving the batch.
func (s *Service) DeliverEggs(ctx context.Context, id int64, quantity int) (models.Batch, error) {
	var batch models.Batch
	err := s.run(ctx, "deliver_eggs", func(tx *memory.Tx, out *outbox) error {
		if quantity <= 0 {
			return models.Validationf("delivered quantity must be positive, got %d", quantity)
		}
		var err error
		batch, err = tx.Batches().Get(id)
		if err != nil {
			return err
		}
		if quantity > batch.Available() {
			return models.Validationf("cannot deliver %d eggs, only %d available", quantity, batch.Available())
		}
		batch.QtyDelivered += quantity
		if err := tx.Batches().Update(batch); err != nil {
			return err
		}
		out.add(batchEntity(id), "%d eggs delivered", quantity)
		return nil
	})
	if err == nil {
		s.metrics.Delivered(quantity)
	}
	return batch, err
}

// AddSelection appends an egg selection line to a batch.
func (s *Service) AddSelection(ctx context.Context, batchID int64, line models.SelectionLine) (models.SelectionLine, error) {
	var created models.SelectionLine
	err := s.run(ctx, "add_selection", func(tx *memory.Tx, _ *outbox) error {
		if line.Quantity <= 0 {
			return models.Validationf("selection quantity must be positive, got %d", line.Quantity)
		}
		if _, err := tx.Batches().Get(batchID); err != nil {
			return err
		}
		line.ID = 0
		line.BatchID = batchID
		if line.Date.IsZero() {
			line.Date = s.now()
		}
		var err error
		created, err = tx.Selections().Create(line)
		return err
	})
	return created, err
}
