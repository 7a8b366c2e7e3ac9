package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/service/reconcile"
)

// AddBreakLine appends an unprocessed break line to the batch notebook.
func (s *Service) AddBreakLine(ctx context.Context, batchID int64, quantity int, note, actor string) (models.BreakHistoryEntry, error) {
	var entry models.BreakHistoryEntry
	err := s.run(ctx, "add_break_line", func(tx *memory.Tx, _ *outbox) error {
		if quantity <= 0 {
			return models.Validationf("break quantity must be positive, got %d", quantity)
		}
		if _, err := tx.Batches().Get(batchID); err != nil {
			return err
		}
		var err error
		entry, err = tx.Breaks().Create(models.BreakHistoryEntry{
			BatchID:  batchID,
			Quantity: quantity,
			Note:     strings.TrimSpace(note),
			Actor:    actor,
			At:       s.now(),
		})
		return err
	})
	return entry, err
}

// ProcessBreakLines scraps the total of the unprocessed break lines from egg
// stock, adds it to the broken quantity and marks the lines processed.
func (s *Service) ProcessBreakLines(ctx context.Context, batchID int64) (int, error) {
	total := 0
	err := s.run(ctx, "process_break_lines", func(tx *memory.Tx, out *outbox) error {
		total = 0
		batch, err := tx.Batches().Get(batchID)
		if err != nil {
			return err
		}
		lines := tx.Breaks().Find(func(e models.BreakHistoryEntry) bool {
			return e.BatchID == batchID && !e.Processed
		}, nil)
		if len(lines) == 0 {
			return models.Validationf("batch %s has no break lines to process", batch.Lot)
		}
		for _, l := range lines {
			total += l.Quantity
		}
		if total <= 0 {
			return models.Validationf("break total must be positive, got %d", total)
		}
		if total > batch.Available() {
			return models.Validationf("cannot break %d eggs, only %d available", total, batch.Available())
		}

		// the oldest pending line names the run so a retry finds its earlier scraps
		if err := s.scrapEggs(ctx, total, breakOrigin(batchID, lines[0].ID)); err != nil {
			return err
		}

		batch.QtyBroken += total
		if err := tx.Batches().Update(batch); err != nil {
			return err
		}
		for _, l := range lines {
			l.Processed = true
			if err := tx.Breaks().Update(l); err != nil {
				return err
			}
		}
		out.add(batchEntity(batchID), "%d eggs broken and removed from inventory", total)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.metrics.Scrapped(total)
	return total, nil
}

// BreakEggs scraps quantity eggs in one step, consumes selection lines oldest
// first and appends an already processed history entry.
func (s *Service) BreakEggs(ctx context.Context, batchID int64, quantity int, note, actor string) (models.BreakHistoryEntry, error) {
	var entry models.BreakHistoryEntry
	err := s.run(ctx, "break_eggs", func(tx *memory.Tx, out *outbox) error {
		if quantity <= 0 {
			return models.Validationf("break quantity must be positive, got %d", quantity)
		}
		batch, err := tx.Batches().Get(batchID)
		if err != nil {
			return err
		}
		if quantity > batch.Available() {
			return models.Validationf("cannot break %d eggs, only %d available", quantity, batch.Available())
		}

		entry, err = tx.Breaks().Create(models.BreakHistoryEntry{
			BatchID:   batchID,
			Quantity:  quantity,
			Note:      strings.TrimSpace(note),
			Actor:     actor,
			At:        s.now(),
			Processed: true,
		})
		if err != nil {
			return err
		}
		if err := s.scrapEggs(ctx, quantity, breakOrigin(batchID, entry.ID)); err != nil {
			return err
		}

		batch.QtyBroken += quantity
		if err := tx.Batches().Update(batch); err != nil {
			return err
		}
		if err := consumeSelections(tx, batchID, quantity); err != nil {
			return err
		}
		body := fmt.Sprintf("%d eggs broken and removed from inventory", quantity)
		if entry.Note != "" {
			body += ": " + entry.Note
		}
		out.add(batchEntity(batchID), "%s", body)
		return nil
	})
	if err == nil {
		s.metrics.Scrapped(quantity)
	}
	return entry, err
}

// consumeSelections removes quantity from selection lines, oldest first.
func consumeSelections(tx *memory.Tx, batchID int64, quantity int) error {
	remaining := quantity
	for _, line := range tx.Selections().Find(func(l models.SelectionLine) bool { return l.BatchID == batchID }, nil) {
		if remaining == 0 {
			break
		}
		if line.Quantity <= remaining {
			remaining -= line.Quantity
			if err := tx.Selections().Delete(line.ID); err != nil {
				return err
			}
			continue
		}
		line.Quantity -= remaining
		remaining = 0
		if err := tx.Selections().Update(line); err != nil {
			return err
		}
	}
	return nil
}

// breakOrigin tags the scraps of one break event. A failed event rolls back
// its history entry, so a retry is assigned the same id and origin.
func breakOrigin(batchID, entryID int64) string {
	return fmt.Sprintf("%s/break/%d", batchEntity(batchID), entryID)
}

// scrapEggs plans the deduction against on-hand egg lots and issues one scrap
// per lot touched. Scraps already recorded under origin count towards total,
// so retrying after a partial failure only removes what is still missing.
// Nothing is scrapped when the lots cannot cover the remainder.
func (s *Service) scrapEggs(ctx context.Context, total int, origin string) error {
	if s.refs.EggsProductID == "" {
		return models.Configurationf("eggs product is not available in the stock ledger")
	}
	done, err := s.ledger.Scrapped(ctx, s.refs.EggsProductID, origin)
	if err != nil {
		return fmt.Errorf("list scraps for %s: %w", origin, err)
	}
	remaining := total - done
	if done > 0 {
		s.logger.Warn("resuming partially applied scrap",
			zap.String("origin", origin), zap.Int("already_scrapped", done), zap.Int("remaining", remaining))
	}
	if remaining <= 0 {
		return nil
	}
	lots, err := s.ledger.OnHandLots(ctx, s.refs.EggsProductID)
	if err != nil {
		return fmt.Errorf("list egg lots: %w", err)
	}
	plan, err := reconcile.Plan(remaining, lots)
	if err != nil {
		return err
	}
	for i, d := range plan {
		_, err := s.ledger.Scrap(ctx, models.ScrapRequest{
			ProductID:  s.refs.EggsProductID,
			LotID:      d.LotID,
			LocationID: d.LocationID,
			Quantity:   d.Quantity,
			Origin:     origin,
		})
		if err != nil {
			if i > 0 {
				s.logger.Error("scrap interrupted after partial deduction",
					zap.String("origin", origin), zap.Int("lots_scrapped", i), zap.Error(err))
			}
			return fmt.Errorf("scrap %d eggs from lot %s: %w", d.Quantity, d.LotID, err)
		}
	}
	return nil
}
