package models

import (
	"fmt"
	"time"
)

// OwnerKind names the record type an observation hangs off.
type OwnerKind string

const (
	OwnerBatch OwnerKind = "batch"
	OwnerStage OwnerKind = "stage"
)

// OwnerRef identifies the owner of an observation record.
type OwnerRef struct {
	Kind OwnerKind `json:"kind" bson:"kind"`
	ID   int64     `json:"id" bson:"id"`
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s/%d", o.Kind, o.ID)
}

// BatchOwner returns the owner reference of a batch.
func BatchOwner(id int64) OwnerRef { return OwnerRef{Kind: OwnerBatch, ID: id} }

// StageOwner returns the owner reference of a stage entry.
func StageOwner(id int64) OwnerRef { return OwnerRef{Kind: OwnerStage, ID: id} }

// ObservationKind lists the auxiliary records carried between stages.
type ObservationKind string

const (
	ObservationEquipment   ObservationKind = "equipment"
	ObservationMaterial    ObservationKind = "material"
	ObservationTemperature ObservationKind = "temperature"
	ObservationSanitation  ObservationKind = "sanitation"
)

// Equipment records the rack or equipment used by an owner.
type Equipment struct {
	ID                int64     `json:"id" bson:"id"`
	Owner             OwnerRef  `json:"owner" bson:"owner"`
	EquipmentRef      string    `json:"equipment_ref" bson:"equipment_ref"`
	Lot               string    `json:"lot" bson:"lot"`
	Quantity          int       `json:"quantity" bson:"quantity"`
	Date              time.Time `json:"date" bson:"date"`
	ProductionSummary string    `json:"production_summary" bson:"production_summary"`
}

func (e Equipment) RecordID() int64 { return e.ID }

func (e Equipment) WithID(id int64) Equipment {
	e.ID = id
	return e
}

// Material records a consumable used by an owner.
type Material struct {
	ID          int64    `json:"id" bson:"id"`
	Owner       OwnerRef `json:"owner" bson:"owner"`
	ProductRef  string   `json:"product_ref" bson:"product_ref"`
	Description string   `json:"description" bson:"description"`
	Lot         string   `json:"lot" bson:"lot"`
	Quantity    float64  `json:"quantity" bson:"quantity"`
	UnitRef     string   `json:"unit_ref" bson:"unit_ref"`
	UnitPrice   float64  `json:"unit_price" bson:"unit_price"`
}

func (m Material) RecordID() int64 { return m.ID }

func (m Material) WithID(id int64) Material {
	m.ID = id
	return m
}

// Subtotal is quantity times unit price.
func (m Material) Subtotal() float64 {
	return m.Quantity * m.UnitPrice
}

// TemperatureReading records climate readings.
type TemperatureReading struct {
	ID         int64     `json:"id" bson:"id"`
	Owner      OwnerRef  `json:"owner" bson:"owner"`
	Date       time.Time `json:"date" bson:"date"`
	MinTemp    float64   `json:"min_temp" bson:"min_temp"`
	MaxTemp    float64   `json:"max_temp" bson:"max_temp"`
	AvgTemp    float64   `json:"avg_temp" bson:"avg_temp"`
	Humidity   float64   `json:"humidity" bson:"humidity"`
	RecordedBy string    `json:"recorded_by" bson:"recorded_by"`
}

func (t TemperatureReading) RecordID() int64 { return t.ID }

func (t TemperatureReading) WithID(id int64) TemperatureReading {
	t.ID = id
	return t
}

// SanitationCheck records a cleaning checklist.
type SanitationCheck struct {
	ID        int64     `json:"id" bson:"id"`
	Owner     OwnerRef  `json:"owner" bson:"owner"`
	Checklist string    `json:"checklist" bson:"checklist"`
	Date      time.Time `json:"date" bson:"date"`
	CheckedBy string    `json:"checked_by" bson:"checked_by"`
}

func (s SanitationCheck) RecordID() int64 { return s.ID }

func (s SanitationCheck) WithID(id int64) SanitationCheck {
	s.ID = id
	return s
}
