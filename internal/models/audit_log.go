package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of significant actions. It does
// NOT use BaseModel because audit rows are never updated.
type AuditLog struct {
	ID        uuid.UUID              `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID             `json:"userID,omitempty" gorm:"type:uuid;index"`
	Action    string                 `json:"action" gorm:"type:varchar(50);not null;index"`
	Details   map[string]interface{} `json:"details,omitempty" gorm:"serializer:json"`
	IPAddress string                 `json:"ipAddress" gorm:"type:varchar(45)"`
	CreatedAt time.Time              `json:"createdAt" gorm:"not null;index"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
