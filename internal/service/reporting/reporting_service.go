package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	repo "github.com/mamadbah2/hatchery/internal/repository/sheets"
)

const (
	dateLayout       = "2006-01-02"
	hatcheryRange    = "Hatchery!A:L"
	headerRange      = "Hatchery!A1:L1"
	defaultDigestCap = 10
)

var header = []interface{}{
	"Date", "Lot", "Status", "Received", "Broken", "Delivered", "Available",
	"Setter loaded", "Hatcher loaded", "Hatcher mortality", "Chicks packaged", "Chicks delivered",
}

// Archive keeps a copy of every exported report.
type Archive interface {
	SaveDailyReport(ctx context.Context, summaries []models.BatchSummary) error
}

// Service builds per-batch summaries and exports them.
type Service struct {
	store   *memory.Store
	repo    repo.Repository
	archive Archive
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. archive may be nil.
func NewService(store *memory.Store, repository repo.Repository, archive Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, repo: repository, archive: archive, logger: logger}
}

// Summaries returns one summary per batch in id order.
func (s *Service) Summaries(ctx context.Context, day time.Time) ([]models.BatchSummary, error) {
	var out []models.BatchSummary
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		out = nil
		for _, b := range tx.Batches().All() {
			out = append(out, summarize(tx, b, day))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load batch summaries: %w", err)
	}
	return out, nil
}

func summarize(tx *memory.Tx, b models.Batch, day time.Time) models.BatchSummary {
	sum := models.BatchSummary{
		Date:      day,
		BatchID:   b.ID,
		Lot:       b.Lot,
		Status:    b.Status,
		Received:  b.QtyReceived,
		Broken:    b.QtyBroken,
		Delivered: b.QtyDelivered,
		Available: b.Available(),
	}

	var setterRates, hatcherRates []float64
	for _, e := range tx.Stages().Find(func(e models.StageEntry) bool { return e.BatchID == b.ID }, nil) {
		switch e.Kind {
		case models.MachineSetter:
			sum.SetterLoaded += e.QuantityLoaded
			setterRates = append(setterRates, e.SuccessRate())
		case models.MachineHatcher:
			sum.HatcherLoaded += e.QuantityLoaded
			sum.HatcherMortality += e.Mortality
			hatcherRates = append(hatcherRates, e.SuccessRate())
		}
	}
	sum.SetterSuccessRate = mean(setterRates)
	sum.HatcherSuccessRate = mean(hatcherRates)

	for _, p := range tx.Packaging().Find(func(p models.PackagingUnit) bool { return p.BatchID == b.ID }, nil) {
		sum.ChicksPackaged += p.ChicksCount
		sum.Boxes += p.Boxes()
	}
	for _, t := range tx.Transfers().Find(func(t models.Transfer) bool { return t.BatchID == b.ID }, nil) {
		if t.Status == models.TransferDelivered {
			sum.ChicksDelivered += t.ChicksCount
		}
	}
	return sum
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// ExportDaily appends one sheet row per batch, archives the run and returns a
// text digest.
func (s *Service) ExportDaily(ctx context.Context, day time.Time) (string, error) {
	summaries, err := s.Summaries(ctx, day)
	if err != nil {
		return "", err
	}

	if err := s.ensureHeader(ctx); err != nil {
		return "", err
	}
	rows := make([][]interface{}, 0, len(summaries))
	for _, sum := range summaries {
		rows = append(rows, row(sum))
	}
	if err := s.repo.AppendRows(ctx, hatcheryRange, rows); err != nil {
		return "", fmt.Errorf("export %d batches: %w", len(rows), err)
	}

	if s.archive != nil {
		if err := s.archive.SaveDailyReport(ctx, summaries); err != nil {
			s.logger.Warn("daily report archive failed", zap.Error(err))
		}
	}

	s.logger.Info("daily report exported", zap.Int("batches", len(summaries)))
	return Digest(day, summaries), nil
}

// ensureHeader writes the column titles when the sheet is still empty.
func (s *Service) ensureHeader(ctx context.Context) error {
	existing, err := s.repo.ReadRange(ctx, headerRange)
	if err != nil {
		return fmt.Errorf("read report header: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if err := s.repo.AppendRows(ctx, hatcheryRange, [][]interface{}{header}); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	return nil
}

func row(sum models.BatchSummary) []interface{} {
	return []interface{}{
		sum.Date.Format(dateLayout),
		sum.Lot,
		string(sum.Status),
		sum.Received,
		sum.Broken,
		sum.Delivered,
		sum.Available,
		sum.SetterLoaded,
		sum.HatcherLoaded,
		sum.HatcherMortality,
		sum.ChicksPackaged,
		sum.ChicksDelivered,
	}
}

// Digest renders summaries as a short message. Only the first ten batches
// get their own line.
func Digest(day time.Time, summaries []models.BatchSummary) string {
	if len(summaries) == 0 {
		return fmt.Sprintf("Hatchery report (%s): no batches yet.", day.Format(dateLayout))
	}

	var received, broken, chicks int
	for _, sum := range summaries {
		received += sum.Received
		broken += sum.Broken
		chicks += sum.ChicksDelivered
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hatchery report (%s): %d batches, %d eggs received, %d broken, %d chicks delivered.",
		day.Format(dateLayout), len(summaries), received, broken, chicks)
	for i, sum := range summaries {
		if i == defaultDigestCap {
			fmt.Fprintf(&b, "\n... and %d more", len(summaries)-defaultDigestCap)
			break
		}
		fmt.Fprintf(&b, "\n- %s [%s]: %d available, setter %.1f%%, hatcher %.1f%%, %d boxes",
			sum.Lot, sum.Status, sum.Available, sum.SetterSuccessRate, sum.HatcherSuccessRate, sum.Boxes)
	}
	return b.String()
}
