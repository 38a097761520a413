package models

import "time"

// StockStatus buckets used by the inventory dashboards.
const (
	StockStatusOut  = "out"
	StockStatusLow  = "low"
	StockStatusGood = "good"
)

// LowStockThreshold is the stock level below which a medicine counts as a
// critical shortage on the admin dashboard.
const LowStockThreshold = 50

// Medicine represents one inventory item managed by administrators.
type Medicine struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Category  string    `gorm:"size:128" json:"category"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	Unit      string    `gorm:"size:32" json:"unit"`
	Expiry    string    `gorm:"size:32" json:"expiry"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName maps the model onto the medicines collection.
func (Medicine) TableName() string { return "medicines" }
