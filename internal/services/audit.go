package services

import (
	"time"

	"github.com/artsearch/backend/internal/models"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions recorded by the handlers.
const (
	AuditActionRegister       = "auth.register"
	AuditActionLogin          = "auth.login"
	AuditActionDeleteAccount  = "auth.delete_account"
	AuditActionFavoriteAdd    = "favorites.add"
	AuditActionFavoriteRemove = "favorites.remove"
	AuditActionCatalogSearch  = "catalog.search"
)

type AuditEntry struct {
	UserID    *uuid.UUID
	Action    string
	Details   map[string]interface{}
	IPAddress string
}

// AuditService appends audit rows off the request path. Writes go
// through a buffered channel drained by a single goroutine; when the
// buffer is full the entry is dropped with a warning rather than
// blocking a handler.
type AuditService struct {
	DB    *gorm.DB
	queue chan models.AuditLog
}

func NewAuditService(db *gorm.DB) *AuditService {
	s := &AuditService{
		DB:    db,
		queue: make(chan models.AuditLog, 1000),
	}
	go s.processQueue()
	return s
}

func (s *AuditService) LogAsync(entry AuditEntry) {
	row := models.AuditLog{
		UserID:    entry.UserID,
		Action:    entry.Action,
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *AuditService) processQueue() {
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}
