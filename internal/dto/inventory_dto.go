package dto

import (
	"time"

	"github.com/shifa-care/shifa-api/internal/store"
)

// MedicineCreateRequest is the admin payload to register a medicine.
type MedicineCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Category string `json:"category" validate:"omitempty,max=128"`
	Stock    int    `json:"stock" validate:"min=0"`
	Unit     string `json:"unit" validate:"omitempty,max=32"`
	Expiry   string `json:"expiry" validate:"omitempty,max=32"`
}

// MedicineUpdateRequest carries a partial medicine update. Nil fields are
// left untouched.
type MedicineUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	Category *string `json:"category" validate:"omitempty,max=128"`
	Stock    *int    `json:"stock" validate:"omitempty,min=0"`
	Unit     *string `json:"unit" validate:"omitempty,max=32"`
	Expiry   *string `json:"expiry" validate:"omitempty,max=32"`
}

// MedicineResponse is the serialized representation of an inventory item.
type MedicineResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	Unit        string    `json:"unit"`
	Expiry      string    `json:"expiry"`
	StockStatus string    `json:"stock_status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMedicineResponse converts a medicine document into a DTO. The stock
// status label is derived, never stored.
func NewMedicineResponse(doc store.Document, stockStatus string) MedicineResponse {
	stock := doc.Int("stock")
	if stock < 0 {
		stock = 0
	}
	return MedicineResponse{
		ID:          doc.ID(),
		Name:        doc.String("name"),
		Category:    doc.String("category"),
		Stock:       stock,
		Unit:        doc.String("unit"),
		Expiry:      doc.String("expiry"),
		StockStatus: stockStatus,
		CreatedAt:   doc.Time("created_at"),
	}
}
