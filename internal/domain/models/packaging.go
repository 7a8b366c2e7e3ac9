package models

import "time"

// ChicksPerBox is the fixed box size used for packaging.
const ChicksPerBox = 40

// PackagingStatus tracks a packaging unit.
type PackagingStatus string

const (
	PackagingDraft            PackagingStatus = "draft"
	PackagingReadyForTransfer PackagingStatus = "ready_for_transfer"
	PackagingDone             PackagingStatus = "done"
)

// PackagingUnit boxes the chicks coming out of one hatcher entry.
type PackagingUnit struct {
	ID                 int64           `json:"id" bson:"id"`
	HatcherStageID     int64           `json:"hatcher_stage_id" bson:"hatcher_stage_id"`
	BatchID            int64           `json:"batch_id" bson:"batch_id"`
	ChicksCount        int             `json:"chicks_count" bson:"chicks_count"`
	PackagingMortality int             `json:"packaging_mortality" bson:"packaging_mortality"`
	Note               string          `json:"note" bson:"note"`
	Status             PackagingStatus `json:"status" bson:"status"`
	CreatedAt          time.Time       `json:"created_at" bson:"created_at"`
}

func (p PackagingUnit) RecordID() int64 { return p.ID }

func (p PackagingUnit) WithID(id int64) PackagingUnit {
	p.ID = id
	return p
}

// Boxes returns the number of full boxes.
func (p PackagingUnit) Boxes() int {
	return BoxesFor(p.ChicksCount)
}

// BoxesFor floors chicks into full boxes.
func BoxesFor(chicks int) int {
	if chicks <= 0 {
		return 0
	}
	return chicks / ChicksPerBox
}
