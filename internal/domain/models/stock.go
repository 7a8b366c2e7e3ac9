package models

import "time"

// StockLot is an on-hand quantity of a product at one location.
type StockLot struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

// Deduction is the share of a scrap request taken from one lot.
type Deduction struct {
	LotID      string `json:"lot_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

// ScrapRequest asks the stock ledger to remove units from a location.
type ScrapRequest struct {
	ProductID  string `json:"product_id"`
	LotID      string `json:"lot_id"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Origin     string `json:"origin"`
}

// MovementRequest asks the stock ledger to move units between locations.
type MovementRequest struct {
	ProductID     string    `json:"product_id"`
	PickingTypeID string    `json:"picking_type_id"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Quantity      int       `json:"quantity"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Origin        string    `json:"origin"`
}
