package models

import "time"

// TransferStatus tracks a transfer record.
type TransferStatus string

const (
	TransferDraft     TransferStatus = "draft"
	TransferDone      TransferStatus = "done"
	TransferDelivered TransferStatus = "delivered"
)

// Transfer moves packaged chicks from the hatchery to storage.
type Transfer struct {
	ID          int64          `json:"id" bson:"id"`
	PackagingID int64          `json:"packaging_id" bson:"packaging_id"`
	BatchID     int64          `json:"batch_id" bson:"batch_id"`
	ChicksCount int            `json:"chicks_count" bson:"chicks_count"`
	Source      string         `json:"source" bson:"source"`
	Destination string         `json:"destination" bson:"destination"`
	Date        time.Time      `json:"date" bson:"date"`
	Note        string         `json:"note" bson:"note"`
	Status      TransferStatus `json:"status" bson:"status"`
	PickingID   string         `json:"picking_id,omitempty" bson:"picking_id,omitempty"`
}

func (t Transfer) RecordID() int64 { return t.ID }

func (t Transfer) WithID(id int64) Transfer {
	t.ID = id
	return t
}
