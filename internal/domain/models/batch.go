package models

import "time"

// BatchStatus enumerates the lifecycle of an egg batch.
type BatchStatus string

const (
	BatchDraft     BatchStatus = "draft"
	BatchInSetter  BatchStatus = "in_setter"
	BatchInHatcher BatchStatus = "in_hatcher"
	BatchDone      BatchStatus = "done"
)

// Batch is a cohort of eggs received together and tracked as one unit.
type Batch struct {
	ID               int64       `json:"id" bson:"id"`
	Lot              string      `json:"lot" bson:"lot"`
	DateReceived     time.Time   `json:"date_received" bson:"date_received"`
	QtyReceived      int         `json:"qty_received" bson:"qty_received"`
	QtyBroken        int         `json:"qty_broken" bson:"qty_broken"`
	QtyDelivered     int         `json:"qty_delivered" bson:"qty_delivered"`
	PreStorageWaste  int         `json:"pre_storage_waste" bson:"pre_storage_waste"`
	Notes            string      `json:"notes" bson:"notes"`
	ReceiptReference string      `json:"receipt_reference,omitempty" bson:"receipt_reference,omitempty"`
	Status           BatchStatus `json:"status" bson:"status"`
	CreatedAt        time.Time   `json:"created_at" bson:"created_at"`
}

func (b Batch) RecordID() int64 { return b.ID }

func (b Batch) WithID(id int64) Batch {
	b.ID = id
	return b
}

// Available is the quantity still held by the batch.
func (b Batch) Available() int {
	return b.QtyReceived - b.QtyBroken - b.QtyDelivered
}

// SelectionLine is a batch-internal egg selection line.
type SelectionLine struct {
	ID       int64     `json:"id" bson:"id"`
	BatchID  int64     `json:"batch_id" bson:"batch_id"`
	Lot      string    `json:"lot" bson:"lot"`
	Quantity int       `json:"quantity" bson:"quantity"`
	Date     time.Time `json:"date" bson:"date"`
}

func (l SelectionLine) RecordID() int64 { return l.ID }

func (l SelectionLine) WithID(id int64) SelectionLine {
	l.ID = id
	return l
}

// BreakHistoryEntry is an append-only breakage event. Only Processed may change
// after creation.
type BreakHistoryEntry struct {
	ID        int64     `json:"id" bson:"id"`
	BatchID   int64     `json:"batch_id" bson:"batch_id"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Note      string    `json:"note" bson:"note"`
	Actor     string    `json:"actor" bson:"actor"`
	At        time.Time `json:"at" bson:"at"`
	Processed bool      `json:"processed" bson:"processed"`
}

func (e BreakHistoryEntry) RecordID() int64 { return e.ID }

func (e BreakHistoryEntry) WithID(id int64) BreakHistoryEntry {
	e.ID = id
	return e
}
