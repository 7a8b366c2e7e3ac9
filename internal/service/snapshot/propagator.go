// Package snapshot copies observation records from one owner to another so a
// successor stage carries the audit trail of its predecessor.
package snapshot

import (
	"fmt"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

// Counts reports how many records of each kind were copied.
type Counts struct {
	Equipment    int
	Materials    int
	Temperatures int
	Sanitation   int
}

// Total sums every kind.
func (c Counts) Total() int {
	return c.Equipment + c.Materials + c.Temperatures + c.Sanitation
}

// Propagate creates one successor-owned copy of every observation owned by
// from. It must run inside the transaction that creates the successor; any
// error aborts that transaction.
func Propagate(tx *memory.Tx, from, to models.OwnerRef) (Counts, error) {
	return Merge(tx, []models.OwnerRef{from}, to)
}

// Merge copies the observations of several predecessors onto one successor.
// A record present on more than one predecessor, such as a batch reading that
// was already propagated to every setter, is copied once; records that exist
// on only one predecessor are all copied.
func Merge(tx *memory.Tx, from []models.OwnerRef, to models.OwnerRef) (Counts, error) {
	var counts Counts
	var err error

	if counts.Equipment, err = copyOwned(tx.Equipment(), from, to,
		func(r models.Equipment) models.OwnerRef { return r.Owner },
		func(r models.Equipment, o models.OwnerRef) models.Equipment { r.Owner = o; return r },
	); err != nil {
		return counts, fmt.Errorf("propagate equipment: %w", err)
	}
	if counts.Materials, err = copyOwned(tx.Materials(), from, to,
		func(r models.Material) models.OwnerRef { return r.Owner },
		func(r models.Material, o models.OwnerRef) models.Material { r.Owner = o; return r },
	); err != nil {
		return counts, fmt.Errorf("propagate materials: %w", err)
	}
	if counts.Temperatures, err = copyOwned(tx.Temperatures(), from, to,
		func(r models.TemperatureReading) models.OwnerRef { return r.Owner },
		func(r models.TemperatureReading, o models.OwnerRef) models.TemperatureReading { r.Owner = o; return r },
	); err != nil {
		return counts, fmt.Errorf("propagate temperatures: %w", err)
	}
	if counts.Sanitation, err = copyOwned(tx.Sanitation(), from, to,
		func(r models.SanitationCheck) models.OwnerRef { return r.Owner },
		func(r models.SanitationCheck, o models.OwnerRef) models.SanitationCheck { r.Owner = o; return r },
	); err != nil {
		return counts, fmt.Errorf("propagate sanitation: %w", err)
	}
	return counts, nil
}

// DeleteOwned removes every observation attached to owner.
func DeleteOwned(tx *memory.Tx, owner models.OwnerRef) error {
	if err := deleteOwned(tx.Equipment(), owner, func(r models.Equipment) models.OwnerRef { return r.Owner }); err != nil {
		return err
	}
	if err := deleteOwned(tx.Materials(), owner, func(r models.Material) models.OwnerRef { return r.Owner }); err != nil {
		return err
	}
	if err := deleteOwned(tx.Temperatures(), owner, func(r models.TemperatureReading) models.OwnerRef { return r.Owner }); err != nil {
		return err
	}
	return deleteOwned(tx.Sanitation(), owner, func(r models.SanitationCheck) models.OwnerRef { return r.Owner })
}

type observation[R any] interface {
	memory.Record[R]
	comparable
}

// copyOwned copies the records of each owner in turn. Records are compared
// without their id and owner; an owner contributes a record only as many
// times as it holds it beyond what earlier owners already contributed.
func copyOwned[R observation[R]](
	c memory.Collection[R],
	from []models.OwnerRef,
	to models.OwnerRef,
	owner func(R) models.OwnerRef,
	reown func(R, models.OwnerRef) R,
) (int, error) {
	copied := make(map[R]int)
	n := 0
	for _, o := range from {
		held := make(map[R]int)
		for _, r := range c.Find(func(r R) bool { return owner(r) == o }, nil) {
			key := reown(r.WithID(0), models.OwnerRef{})
			held[key]++
			if held[key] <= copied[key] {
				continue
			}
			if _, err := c.Create(reown(key, to)); err != nil {
				return n, err
			}
			n++
		}
		for key, count := range held {
			if count > copied[key] {
				copied[key] = count
			}
		}
	}
	return n, nil
}

func deleteOwned[R memory.Record[R]](c memory.Collection[R], owner models.OwnerRef, ownerOf func(R) models.OwnerRef) error {
	for _, r := range c.Find(func(r R) bool { return ownerOf(r) == owner }, nil) {
		if err := c.Delete(r.RecordID()); err != nil {
			return err
		}
	}
	return nil
}
