package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity entry classifications shown on the audit feed.
const (
	ActivityTypeSuccess = "success"
	ActivityTypeWarning = "warning"
	ActivityTypeInfo    = "info"
	ActivityTypeDefault = "default"
)

// ActivityLog is one append-only audit entry produced as a side effect of a
// mutation elsewhere in the system. Entries are never updated or deleted.
type ActivityLog struct {
	ID        string            `gorm:"primaryKey;size:64" json:"id"`
	Actor     string            `gorm:"size:128;not null;column:actor" json:"user"`
	Action    string            `gorm:"size:255;not null" json:"action"`
	Type      string            `gorm:"size:16;not null;default:default" json:"type"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// TableName maps the model onto the activities collection.
func (ActivityLog) TableName() string { return "activities" }
