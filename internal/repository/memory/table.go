package memory

import (
	"errors"
	"sort"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

var errReadOnly = errors.New("write attempted inside a read-only view")

// Record is implemented by every persisted model.
type Record[R any] interface {
	RecordID() int64
	WithID(id int64) R
}

// Order reports whether a sorts before b.
type Order[R any] func(a, b R) bool

// ByIDDesc orders records newest first.
func ByIDDesc[R Record[R]]() Order[R] {
	return func(a, b R) bool { return a.RecordID() > b.RecordID() }
}

type table[R Record[R]] struct {
	rows   map[int64]R
	nextID int64
}

func newTable[R Record[R]]() *table[R] {
	return &table[R]{rows: make(map[int64]R)}
}

func (t *table[R]) clone() *table[R] {
	rows := make(map[int64]R, len(t.rows))
	for id, r := range t.rows {
		rows[id] = r
	}
	return &table[R]{rows: rows, nextID: t.nextID}
}

func (t *table[R]) sorted(match func(R) bool, order Order[R]) []R {
	out := make([]R, 0, len(t.rows))
	for _, r := range t.rows {
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordID() < out[j].RecordID()
	})
	if order != nil {
		sort.SliceStable(out, func(i, j int) bool { return order(out[i], out[j]) })
	}
	return out
}

func (t *table[R]) load(rows []R, nextID int64) {
	t.rows = make(map[int64]R, len(rows))
	for _, r := range rows {
		t.rows[r.RecordID()] = r
		if r.RecordID() > nextID {
			nextID = r.RecordID()
		}
	}
	t.nextID = nextID
}

// Collection exposes create, read, update, delete and ordered query over one
// record kind inside a transaction.
type Collection[R Record[R]] struct {
	t        *table[R]
	kind     string
	readOnly bool
}

// Create assigns the next identifier and stores the record.
func (c Collection[R]) Create(r R) (R, error) {
	if c.readOnly {
		var zero R
		return zero, errReadOnly
	}
	c.t.nextID++
	r = r.WithID(c.t.nextID)
	c.t.rows[c.t.nextID] = r
	return r, nil
}

// Get reads one record.
func (c Collection[R]) Get(id int64) (R, error) {
	r, ok := c.t.rows[id]
	if !ok {
		var zero R
		return zero, models.NotFoundf("%s %d", c.kind, id)
	}
	return r, nil
}

// Update replaces an existing record.
func (c Collection[R]) Update(r R) error {
	if c.readOnly {
		return errReadOnly
	}
	if _, ok := c.t.rows[r.RecordID()]; !ok {
		return models.NotFoundf("%s %d", c.kind, r.RecordID())
	}
	c.t.rows[r.RecordID()] = r
	return nil
}

// Delete removes a record.
func (c Collection[R]) Delete(id int64) error {
	if c.readOnly {
		return errReadOnly
	}
	if _, ok := c.t.rows[id]; !ok {
		return models.NotFoundf("%s %d", c.kind, id)
	}
	delete(c.t.rows, id)
	return nil
}

// Find returns the records accepted by match (all when nil), ordered by id
// ascending unless an order is supplied.
func (c Collection[R]) Find(match func(R) bool, order Order[R]) []R {
	return c.t.sorted(match, order)
}

// All returns every record ordered by id ascending.
func (c Collection[R]) All() []R {
	return c.t.sorted(nil, nil)
}

// Count returns the number of records accepted by match.
func (c Collection[R]) Count(match func(R) bool) int {
	n := 0
	for _, r := range c.t.rows {
		if match == nil || match(r) {
			n++
		}
	}
	return n
}
