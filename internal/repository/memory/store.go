// Package memory provides the transactional record store used by the
// pipeline. State lives in memory; an optional Persister snapshots it to a
// durable engine after every committed transaction.
package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

// Persister loads and saves full store snapshots.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// Store serializes writers: each transaction runs against a private clone of
// the state which replaces the live state only when fn and the persister both
// succeed.
type Store struct {
	mu        sync.RWMutex
	state     *state
	persister Persister
	logger    *zap.Logger
}

// NewStore returns an empty store without durable persistence.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{state: newState(), logger: logger}
}

// Open hydrates a store from the persister and keeps it for future commits.
func Open(ctx context.Context, persister Persister, logger *zap.Logger) (*Store, error) {
	s := NewStore(logger)
	if persister == nil {
		return s, nil
	}
	snap, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.state = stateFromSnapshot(snap)
	s.persister = persister
	s.logger.Info("store hydrated",
		zap.Int("batches", len(snap.Batches)),
		zap.Int("machines", len(snap.Machines)),
		zap.Int("stages", len(snap.Stages)))
	return s, nil
}

// RunInTransaction applies fn atomically. Any error from fn or from the
// persister leaves the live state untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&Tx{state: working}); err != nil {
		return err
	}
	if s.persister != nil {
		if err := s.persister.Save(ctx, working.export()); err != nil {
			s.logger.Error("snapshot persist failed, transaction discarded", zap.Error(err))
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}
	s.state = working
	return nil
}

// View runs fn against the committed state. Writes fail inside a view.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{state: s.state, readOnly: true})
}

// Snapshot exports the committed state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.export()
}

// Tx is the unit of work handed to transaction callbacks.
type Tx struct {
	state    *state
	readOnly bool
}

func (tx *Tx) Batches() Collection[models.Batch] {
	return Collection[models.Batch]{t: tx.state.batches, kind: "batch", readOnly: tx.readOnly}
}

func (tx *Tx) Machines() Collection[models.Machine] {
	return Collection[models.Machine]{t: tx.state.machines, kind: "machine", readOnly: tx.readOnly}
}

func (tx *Tx) Stages() Collection[models.StageEntry] {
	return Collection[models.StageEntry]{t: tx.state.stages, kind: "stage", readOnly: tx.readOnly}
}

func (tx *Tx) Packaging() Collection[models.PackagingUnit] {
	return Collection[models.PackagingUnit]{t: tx.state.packaging, kind: "packaging unit", readOnly: tx.readOnly}
}

func (tx *Tx) Transfers() Collection[models.Transfer] {
	return Collection[models.Transfer]{t: tx.state.transfers, kind: "transfer", readOnly: tx.readOnly}
}

func (tx *Tx) Selections() Collection[models.SelectionLine] {
	return Collection[models.SelectionLine]{t: tx.state.selections, kind: "selection line", readOnly: tx.readOnly}
}

func (tx *Tx) Breaks() Collection[models.BreakHistoryEntry] {
	return Collection[models.BreakHistoryEntry]{t: tx.state.breaks, kind: "break entry", readOnly: tx.readOnly}
}

func (tx *Tx) Equipment() Collection[models.Equipment] {
	return Collection[models.Equipment]{t: tx.state.equipment, kind: "equipment", readOnly: tx.readOnly}
}

func (tx *Tx) Materials() Collection[models.Material] {
	return Collection[models.Material]{t: tx.state.materials, kind: "material", readOnly: tx.readOnly}
}

func (tx *Tx) Temperatures() Collection[models.TemperatureReading] {
	return Collection[models.TemperatureReading]{t: tx.state.temperatures, kind: "temperature reading", readOnly: tx.readOnly}
}

func (tx *Tx) Sanitation() Collection[models.SanitationCheck] {
	return Collection[models.SanitationCheck]{t: tx.state.sanitation, kind: "sanitation check", readOnly: tx.readOnly}
}
