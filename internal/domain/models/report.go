package models

import "time"

// BatchSummary aggregates the pipeline state of one batch for reporting.
type BatchSummary struct {
	Date               time.Time   `bson:"date" json:"date"`
	BatchID            int64       `bson:"batch_id" json:"batch_id"`
	Lot                string      `bson:"lot" json:"lot"`
	Status             BatchStatus `bson:"status" json:"status"`
	Received           int         `bson:"received" json:"received"`
	Broken             int         `bson:"broken" json:"broken"`
	Delivered          int         `bson:"delivered" json:"delivered"`
	Available          int         `bson:"available" json:"available"`
	SetterLoaded       int         `bson:"setter_loaded" json:"setter_loaded"`
	HatcherLoaded      int         `bson:"hatcher_loaded" json:"hatcher_loaded"`
	HatcherMortality   int         `bson:"hatcher_mortality" json:"hatcher_mortality"`
	SetterSuccessRate  float64     `bson:"setter_success_rate" json:"setter_success_rate"`
	HatcherSuccessRate float64     `bson:"hatcher_success_rate" json:"hatcher_success_rate"`
	ChicksPackaged     int         `bson:"chicks_packaged" json:"chicks_packaged"`
	Boxes              int         `bson:"boxes" json:"boxes"`
	ChicksDelivered    int         `bson:"chicks_delivered" json:"chicks_delivered"`
}
