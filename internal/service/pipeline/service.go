// Package pipeline moves egg batches through setter, hatcher, packaging and
// transfer. Every operation runs in one store transaction and either commits
// completely or leaves every conserved quantity unchanged.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/metrics"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/service/allocation"
	"github.com/mamadbah2/hatchery/internal/service/audit"
	"github.com/mamadbah2/hatchery/pkg/clients/stock"
)

// Options carries the configurable defaults of the pipeline.
type Options struct {
	SetterPool          allocation.DefaultPool
	HatcherPool         allocation.DefaultPool
	SourceLocation      string
	DestinationLocation string
	Now                 func() time.Time
}

// Service exposes every pipeline operation.
type Service struct {
	store   *memory.Store
	ledger  stock.Ledger
	refs    stock.References
	sink    audit.Sink
	metrics *metrics.Metrics
	opts    Options
	logger  *zap.Logger
}

// NewService wires a pipeline service. sink and m may be nil.
func NewService(store *memory.Store, ledger stock.Ledger, refs stock.References, sink audit.Sink, m *metrics.Metrics, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = audit.Multi{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		store:   store,
		ledger:  ledger,
		refs:    refs,
		sink:    sink,
		metrics: m,
		opts:    opts,
		logger:  logger,
	}
}

// Bootstrap creates the default machine pools for kinds that have no machine
// yet. The check and the creation share one transaction.
func (s *Service) Bootstrap(ctx context.Context) error {
	created := 0
	err := s.store.RunInTransaction(ctx, func(tx *memory.Tx) error {
		created = 0
		for _, pool := range []allocation.DefaultPool{s.opts.SetterPool, s.opts.HatcherPool} {
			if pool.Count <= 0 {
				continue
			}
			kind := pool.Kind
			if tx.Machines().Count(func(m models.Machine) bool { return m.Kind == kind }) > 0 {
				continue
			}
			for _, m := range pool.Machines() {
				if _, err := tx.Machines().Create(m); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bootstrap machine pools: %w", err)
	}
	if created > 0 {
		s.logger.Info("default machine pools created", zap.Int("machines", created))
	}
	return nil
}

type note struct {
	entity string
	body   string
}

// outbox buffers notes until the transaction commits.
type outbox struct {
	notes []note
}

func (o *outbox) add(entity, format string, args ...any) {
	o.notes = append(o.notes, note{entity: entity, body: fmt.Sprintf(format, args...)})
}

// run executes fn in a transaction, records the outcome and publishes the
// buffered notes once committed.
func (s *Service) run(ctx context.Context, op string, fn func(tx *memory.Tx, out *outbox) error) error {
	var out outbox
	err := s.store.RunInTransaction(ctx, func(tx *memory.Tx) error {
		out = outbox{}
		return fn(tx, &out)
	})
	s.metrics.Observe(op, err)
	if err != nil {
		if metrics.Kind(err) == "internal" {
			s.logger.Error("operation failed", zap.String("operation", op), zap.Error(err))
		} else {
			s.logger.Info("operation rejected", zap.String("operation", op), zap.Error(err))
		}
		return err
	}
	for _, n := range out.notes {
		s.sink.Note(ctx, n.entity, n.body)
	}
	return nil
}

func (s *Service) now() time.Time {
	return s.opts.Now()
}

func batchEntity(id int64) string     { return models.BatchOwner(id).String() }
func stageEntity(id int64) string     { return models.StageOwner(id).String() }
func packagingEntity(id int64) string { return fmt.Sprintf("packaging/%d", id) }
func transferEntity(id int64) string  { return fmt.Sprintf("transfer/%d", id) }

// checkConserved rejects a hop that would create quantity.
func checkConserved(hop string, before, after int) error {
	if after > before {
		return models.Consistencyf("%s would raise the conserved quantity from %d to %d", hop, before, after)
	}
	return nil
}
