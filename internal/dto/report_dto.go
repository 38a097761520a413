package dto

import (
	"time"

	"github.com/shifa-care/shifa-api/internal/store"
)

// ReportCreateRequest is the payload a pharmacy operator submits to raise a
// shortage report. Status is never accepted from the caller: every report
// starts out pending.
type ReportCreateRequest struct {
	Governorate string `json:"governorate" validate:"required,max=64"`
	Hospital    string `json:"hospital" validate:"required,min=2,max=255"`
	Drug        string `json:"drug" validate:"required,min=2,max=255"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
}

// ReportResponse is the serialized representation of a shortage report.
type ReportResponse struct {
	ID          string    `json:"id"`
	Governorate string    `json:"governorate"`
	Hospital    string    `json:"hospital"`
	Drug        string    `json:"drug"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReportResponse converts a report document into a DTO.
func NewReportResponse(doc store.Document) ReportResponse {
	return ReportResponse{
		ID:          doc.ID(),
		Governorate: doc.String("governorate"),
		Hospital:    doc.String("hospital"),
		Drug:        doc.String("drug"),
		Priority:    doc.String("priority"),
		Status:      doc.String("status"),
		CreatedAt:   doc.Time("created_at"),
	}
}

// NewReportResponseSlice converts a slice of report documents into DTOs.
func NewReportResponseSlice(docs []store.Document) []ReportResponse {
	out := make([]ReportResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewReportResponse(doc))
	}
	return out
}
