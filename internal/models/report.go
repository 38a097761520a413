package models

import "time"

// Shortage report lifecycle states. A report is created as pending and only
// moves forward: pending -> processing -> resolved.
const (
	ReportStatusPending    = "pending"
	ReportStatusProcessing = "processing"
	ReportStatusResolved   = "resolved"
)

// Shortage report priorities as entered by pharmacy operators.
const (
	ReportPriorityLow    = "low"
	ReportPriorityMedium = "medium"
	ReportPriorityHigh   = "high"
)

// ShortageReport is a drug shortage raised by a hospital inside one governorate.
type ShortageReport struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Governorate string    `gorm:"size:64;index;not null" json:"governorate"`
	Hospital    string    `gorm:"size:255;not null" json:"hospital"`
	Drug        string    `gorm:"size:255;not null" json:"drug"`
	Priority    string    `gorm:"size:16;not null;default:low" json:"priority"`
	Status      string    `gorm:"size:16;index;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName maps the model onto the reports collection.
func (ShortageReport) TableName() string { return "reports" }
