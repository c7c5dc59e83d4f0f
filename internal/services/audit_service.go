package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/events"
	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// auditService handles audit log recording and publishes each entry as a
// domain event.
type auditService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewAuditService creates a new AuditServicer. A nil publisher disables
// event delivery.
func NewAuditService(db *gorm.DB, publisher events.Publisher) AuditServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &auditService{db: db, publisher: publisher}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}

	event := events.Event{
		Type:         events.TypeFor(action, resourceType),
		UserID:       userID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Data:         changes,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		logger.Get().Warnw("failed to publish event", "error", err, "type", event.Type, "resource_id", resourceID)
	}
}
