package pipeline

import (
	"context"
	"strings"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

// Observations groups the auxiliary records of one owner.
type Observations struct {
	Equipment    []models.Equipment          `json:"equipment"`
	Materials    []models.Material           `json:"materials"`
	Temperatures []models.TemperatureReading `json:"temperatures"`
	Sanitation   []models.SanitationCheck    `json:"sanitation"`
}

func ownerExists(tx *memory.Tx, owner models.OwnerRef) error {
	switch owner.Kind {
	case models.OwnerBatch:
		_, err := tx.Batches().Get(owner.ID)
		return err
	case models.OwnerStage:
		_, err := tx.Stages().Get(owner.ID)
		return err
	default:
		return models.Validationf("unknown observation owner %q", owner.Kind)
	}
}

func observationsOf(tx *memory.Tx, owner models.OwnerRef) Observations {
	return Observations{
		Equipment:    tx.Equipment().Find(func(r models.Equipment) bool { return r.Owner == owner }, nil),
		Materials:    tx.Materials().Find(func(r models.Material) bool { return r.Owner == owner }, nil),
		Temperatures: tx.Temperatures().Find(func(r models.TemperatureReading) bool { return r.Owner == owner }, nil),
		Sanitation:   tx.Sanitation().Find(func(r models.SanitationCheck) bool { return r.Owner == owner }, nil),
	}
}

// ListObservations returns the observations attached to owner.
func (s *Service) ListObservations(ctx context.Context, owner models.OwnerRef) (Observations, error) {
	var obs Observations
	err := s.store.View(ctx, func(tx *memory.Tx) error {
		if err := ownerExists(tx, owner); err != nil {
			return err
		}
		obs = observationsOf(tx, owner)
		return nil
	})
	return obs, err
}

func (s *Service) AddEquipment(ctx context.Context, owner models.OwnerRef, rec models.Equipment) (models.Equipment, error) {
	var created models.Equipment
	err := s.run(ctx, "add_equipment", func(tx *memory.Tx, _ *outbox) error {
		if strings.TrimSpace(rec.EquipmentRef) == "" {
			return models.Validationf("equipment reference is required")
		}
		if rec.Quantity < 0 {
			return models.Validationf("equipment quantity cannot be negative")
		}
		if err := ownerExists(tx, owner); err != nil {
			return err
		}
		rec.ID, rec.Owner = 0, owner
		if rec.Date.IsZero() {
			rec.Date = s.now()
		}
		var err error
		created, err = tx.Equipment().Create(rec)
		return err
	})
	return created, err
}

func (s *Service) AddMaterial(ctx context.Context, owner models.OwnerRef, rec models.Material) (models.Material, error) {
	var created models.Material
	err := s.run(ctx, "add_material", func(tx *memory.Tx, _ *outbox) error {
		if strings.TrimSpace(rec.ProductRef) == "" {
			return models.Validationf("material product is required")
		}
		if rec.Quantity < 0 || rec.UnitPrice < 0 {
			return models.Validationf("material quantity and unit price cannot be negative")
		}
		if err := ownerExists(tx, owner); err != nil {
			return err
		}
		rec.ID, rec.Owner = 0, owner
		var err error
		created, err = tx.Materials().Create(rec)
		return err
	})
	return created, err
}

func (s *Service) AddTemperature(ctx context.Context, owner models.OwnerRef, rec models.TemperatureReading) (models.TemperatureReading, error) {
	var created models.TemperatureReading
	err := s.run(ctx, "add_temperature", func(tx *memory.Tx, _ *outbox) error {
		if rec.MinTemp > rec.MaxTemp {
			return models.Validationf("minimum temperature %.1f exceeds maximum %.1f", rec.MinTemp, rec.MaxTemp)
		}
		if rec.Humidity < 0 || rec.Humidity > 100 {
			return models.Validationf("humidity must be between 0 and 100, got %.1f", rec.Humidity)
		}
		if err := ownerExists(tx, owner); err != nil {
			return err
		}
		rec.ID, rec.Owner = 0, owner
		if rec.Date.IsZero() {
			rec.Date = s.now()
		}
		var err error
		created, err = tx.Temperatures().Create(rec)
		return err
	})
	return created, err
}

func (s *Service) AddSanitation(ctx context.Context, owner models.OwnerRef, rec models.SanitationCheck) (models.SanitationCheck, error) {
	var created models.SanitationCheck
	err := s.run(ctx, "add_sanitation", func(tx *memory.Tx, _ *outbox) error {
		if strings.TrimSpace(rec.Checklist) == "" {
			return models.Validationf("sanitation checklist is required")
		}
		if err := ownerExists(tx, owner); err != nil {
			return err
		}
		rec.ID, rec.Owner = 0, owner
		if rec.Date.IsZero() {
			rec.Date = s.now()
		}
		var err error
		created, err = tx.Sanitation().Create(rec)
		return err
	})
	return created, err
}
