package memory

import (
	"encoding/json"
	"fmt"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

type state struct {
	batches      *table[models.Batch]
	machines     *table[models.Machine]
	stages       *table[models.StageEntry]
	packaging    *table[models.PackagingUnit]
	transfers    *table[models.Transfer]
	selections   *table[models.SelectionLine]
	breaks       *table[models.BreakHistoryEntry]
	equipment    *table[models.Equipment]
	materials    *table[models.Material]
	temperatures *table[models.TemperatureReading]
	sanitation   *table[models.SanitationCheck]
}

func newState() *state {
	return &state{
		batches:      newTable[models.Batch](),
		machines:     newTable[models.Machine](),
		stages:       newTable[models.StageEntry](),
		packaging:    newTable[models.PackagingUnit](),
		transfers:    newTable[models.Transfer](),
		selections:   newTable[models.SelectionLine](),
		breaks:       newTable[models.BreakHistoryEntry](),
		equipment:    newTable[models.Equipment](),
		materials:    newTable[models.Material](),
		temperatures: newTable[models.TemperatureReading](),
		sanitation:   newTable[models.SanitationCheck](),
	}
}

func (s *state) clone() *state {
	return &state{
		batches:      s.batches.clone(),
		machines:     s.machines.clone(),
		stages:       s.stages.clone(),
		packaging:    s.packaging.clone(),
		transfers:    s.transfers.clone(),
		selections:   s.selections.clone(),
		breaks:       s.breaks.clone(),
		equipment:    s.equipment.clone(),
		materials:    s.materials.clone(),
		temperatures: s.temperatures.clone(),
		sanitation:   s.sanitation.clone(),
	}
}

// Snapshot is the serializable form of the whole store.
type Snapshot struct {
	Batches      []models.Batch              `json:"batches"`
	Machines     []models.Machine            `json:"machines"`
	Stages       []models.StageEntry         `json:"stages"`
	Packaging    []models.PackagingUnit      `json:"packaging"`
	Transfers    []models.Transfer           `json:"transfers"`
	Selections   []models.SelectionLine      `json:"selections"`
	Breaks       []models.BreakHistoryEntry  `json:"breaks"`
	Equipment    []models.Equipment          `json:"equipment"`
	Materials    []models.Material           `json:"materials"`
	Temperatures []models.TemperatureReading `json:"temperatures"`
	Sanitation   []models.SanitationCheck    `json:"sanitation"`
	Sequences    map[string]int64            `json:"sequences"`
}

// Buckets lists the keys used by Encode and Decode. Persisters store one row
// or document per bucket.
var Buckets = []string{
	"batches", "machines", "stages", "packaging", "transfers", "selections",
	"breaks", "equipment", "materials", "temperatures", "sanitation", "sequences",
}

func (s *state) export() Snapshot {
	return Snapshot{
		Batches:      s.batches.sorted(nil, nil),
		Machines:     s.machines.sorted(nil, nil),
		Stages:       s.stages.sorted(nil, nil),
		Packaging:    s.packaging.sorted(nil, nil),
		Transfers:    s.transfers.sorted(nil, nil),
		Selections:   s.selections.sorted(nil, nil),
		Breaks:       s.breaks.sorted(nil, nil),
		Equipment:    s.equipment.sorted(nil, nil),
		Materials:    s.materials.sorted(nil, nil),
		Temperatures: s.temperatures.sorted(nil, nil),
		Sanitation:   s.sanitation.sorted(nil, nil),
		Sequences: map[string]int64{
			"batches":      s.batches.nextID,
			"machines":     s.machines.nextID,
			"stages":       s.stages.nextID,
			"packaging":    s.packaging.nextID,
			"transfers":    s.transfers.nextID,
			"selections":   s.selections.nextID,
			"breaks":       s.breaks.nextID,
			"equipment":    s.equipment.nextID,
			"materials":    s.materials.nextID,
			"temperatures": s.temperatures.nextID,
			"sanitation":   s.sanitation.nextID,
		},
	}
}

func stateFromSnapshot(snap Snapshot) *state {
	s := newState()
	seq := snap.Sequences
	s.batches.load(snap.Batches, seq["batches"])
	s.machines.load(snap.Machines, seq["machines"])
	s.stages.load(snap.Stages, seq["stages"])
	s.packaging.load(snap.Packaging, seq["packaging"])
	s.transfers.load(snap.Transfers, seq["transfers"])
	s.selections.load(snap.Selections, seq["selections"])
	s.breaks.load(snap.Breaks, seq["breaks"])
	s.equipment.load(snap.Equipment, seq["equipment"])
	s.materials.load(snap.Materials, seq["materials"])
	s.temperatures.load(snap.Temperatures, seq["temperatures"])
	s.sanitation.load(snap.Sanitation, seq["sanitation"])
	return s
}

func (snap *Snapshot) target(bucket string) (any, error) {
	switch bucket {
	case "batches":
		return &snap.Batches, nil
	case "machines":
		return &snap.Machines, nil
	case "stages":
		return &snap.Stages, nil
	case "packaging":
		return &snap.Packaging, nil
	case "transfers":
		return &snap.Transfers, nil
	case "selections":
		return &snap.Selections, nil
	case "breaks":
		return &snap.Breaks, nil
	case "equipment":
		return &snap.Equipment, nil
	case "materials":
		return &snap.Materials, nil
	case "temperatures":
		return &snap.Temperatures, nil
	case "sanitation":
		return &snap.Sanitation, nil
	case "sequences":
		return &snap.Sequences, nil
	default:
		return nil, fmt.Errorf("unknown bucket %q", bucket)
	}
}

// Encode renders every bucket as a JSON payload.
func (snap Snapshot) Encode() (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets))
	for _, bucket := range Buckets {
		target, err := snap.target(bucket)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(target)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeSnapshot rebuilds a snapshot from bucket payloads. Unknown buckets are
// ignored so older persisted layouts keep loading.
func DecodeSnapshot(payloads map[string][]byte) (Snapshot, error) {
	var snap Snapshot
	for bucket, data := range payloads {
		target, err := snap.target(bucket)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(data, target); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	return snap, nil
}
