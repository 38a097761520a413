package models

import "time"

// Shipment delivery states.
const (
	ShipmentStatusTransit   = "transit"
	ShipmentStatusDelayed   = "delayed"
	ShipmentStatusDelivered = "delivered"
)

// Shipment tracks one medicine delivery between facilities.
// A delivered shipment always carries progress 100.
type Shipment struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Driver    string    `gorm:"size:128" json:"driver"`
	From      string    `gorm:"size:255;column:from_location" json:"from"`
	To        string    `gorm:"size:255;column:to_location" json:"to"`
	ETA       string    `gorm:"size:64;column:eta" json:"eta"`
	Status    string    `gorm:"size:16;index;not null;default:transit" json:"status"`
	Progress  int       `gorm:"not null;default:0" json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName maps the model onto the shipments collection.
func (Shipment) TableName() string { return "shipments" }
