package models

import "time"

// StageStatus is the status of a single stage entry.
type StageStatus string

const (
	StageInStage      StageStatus = "in_stage"
	StageReadyForNext StageStatus = "ready_for_next"
	StageDone         StageStatus = "done"
)

// StageEntry records the quantity a batch placed in one machine for one stage.
type StageEntry struct {
	ID             int64       `json:"id" bson:"id"`
	Kind           MachineKind `json:"kind" bson:"kind"`
	BatchID        int64       `json:"batch_id" bson:"batch_id"`
	PredecessorID  int64       `json:"predecessor_id,omitempty" bson:"predecessor_id,omitempty"`
	MachineID      int64       `json:"machine_id" bson:"machine_id"`
	QuantityLoaded int         `json:"quantity_loaded" bson:"quantity_loaded"`
	Mortality      int         `json:"mortality" bson:"mortality"`
	Status         StageStatus `json:"status" bson:"status"`
	StartedAt      time.Time   `json:"started_at" bson:"started_at"`
	EndedAt        *time.Time  `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
}

func (s StageEntry) RecordID() int64 { return s.ID }

func (s StageEntry) WithID(id int64) StageEntry {
	s.ID = id
	return s
}

// Surviving is the quantity carried forward out of this entry.
func (s StageEntry) Surviving() int {
	return s.QuantityLoaded - s.Mortality
}

// SuccessRate is the surviving share of the loaded quantity, in percent.
func (s StageEntry) SuccessRate() float64 {
	if s.QuantityLoaded == 0 {
		return 0
	}
	return float64(s.QuantityLoaded-s.Mortality) / float64(s.QuantityLoaded) * 100
}

// ConservedQuantity sums loaded minus mortality over a set of entries.
func ConservedQuantity(entries []StageEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Surviving()
	}
	return total
}
