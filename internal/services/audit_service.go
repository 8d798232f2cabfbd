package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log implements AuditServicer. The write outlives a cancelled request so a
// completed mutation is still recorded.
func (s *auditService) Log(ctx context.Context, entry AuditEntry) {
	log := logger.With(
		"user_id", entry.UserID,
		"action", entry.Action,
		"resource_type", entry.ResourceType,
		"resource_id", entry.ResourceID,
	)

	row := &models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
	}
	if len(entry.Changes) > 0 {
		data, err := json.Marshal(entry.Changes)
		if err != nil {
			log.Warnw("audit changes not serializable", "error", err)
			data = []byte("{}")
		}
		row.Changes = string(data)
	}

	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(row).Error; err != nil {
		log.Errorw("failed to write audit entry", "error", err)
	}
}

// History implements AuditServicer.
func (s *auditService) History(ctx context.Context, resourceType, resourceID string) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
