package dto

import (
	"time"

	"github.com/shifa-care/shifa-api/internal/store"
)

// ActivityResponse is one entry on the audit feed. The relative timestamp is
// derived at serialization time from the entry's creation instant.
type ActivityResponse struct {
	ID        string    `json:"id"`
	Actor     string    `json:"user"`
	Action    string    `json:"action"`
	Type      string    `json:"type"`
	TimeAgo   string    `json:"time_ago"`
	CreatedAt time.Time `json:"created_at"`
}

// NewActivityResponse converts an activity document into a DTO.
func NewActivityResponse(doc store.Document, timeAgo string) ActivityResponse {
	return ActivityResponse{
		ID:        doc.ID(),
		Actor:     doc.String("user"),
		Action:    doc.String("action"),
		Type:      doc.String("type"),
		TimeAgo:   timeAgo,
		CreatedAt: doc.Time("created_at"),
	}
}
