package dto

import (
	"time"

	"github.com/shifa-care/shifa-api/internal/store"
)

// ShipmentCreateRequest registers a new medicine delivery.
type ShipmentCreateRequest struct {
	Driver string `json:"driver" validate:"required,min=2,max=128"`
	From   string `json:"from" validate:"required,min=2,max=255"`
	To     string `json:"to" validate:"required,min=2,max=255"`
	ETA    string `json:"eta" validate:"omitempty,max=64"`
}

// ShipmentProgressRequest updates delivery progress and optionally status.
type ShipmentProgressRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=transit delayed delivered"`
	Progress *int   `json:"progress" validate:"omitempty,min=0,max=100"`
}

// ShipmentResponse is the serialized representation of a shipment.
type ShipmentResponse struct {
	ID        string    `json:"id"`
	Driver    string    `json:"driver"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ETA       string    `json:"eta"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// NewShipmentResponse converts a shipment document into a DTO.
func NewShipmentResponse(doc store.Document) ShipmentResponse {
	return ShipmentResponse{
		ID:        doc.ID(),
		Driver:    doc.String("driver"),
		From:      doc.String("from"),
		To:        doc.String("to"),
		ETA:       doc.String("eta"),
		Status:    doc.String("status"),
		Progress:  doc.Int("progress"),
		CreatedAt: doc.Time("created_at"),
	}
}

// NewShipmentResponseSlice converts a slice of shipment documents into DTOs.
func NewShipmentResponseSlice(docs []store.Document) []ShipmentResponse {
	out := make([]ShipmentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewShipmentResponse(doc))
	}
	return out
}
