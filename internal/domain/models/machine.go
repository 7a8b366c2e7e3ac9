package models

import "strings"

// MachineKind distinguishes setter and hatcher pools.
type MachineKind string

const (
	MachineSetter  MachineKind = "setter"
	MachineHatcher MachineKind = "hatcher"
)

// ParseMachineKind accepts case-insensitive kind names.
func ParseMachineKind(value string) (MachineKind, error) {
	switch MachineKind(strings.ToLower(strings.TrimSpace(value))) {
	case MachineSetter:
		return MachineSetter, nil
	case MachineHatcher:
		return MachineHatcher, nil
	default:
		return "", Validationf("unknown machine kind %q", value)
	}
}

// Machine is a capacity-bounded incubation slot.
type Machine struct {
	ID       int64       `json:"id" bson:"id"`
	Name     string      `json:"name" bson:"name"`
	Kind     MachineKind `json:"kind" bson:"kind"`
	Capacity int         `json:"capacity" bson:"capacity"`
}

func (m Machine) RecordID() int64 { return m.ID }

func (m Machine) WithID(id int64) Machine {
	m.ID = id
	return m
}
