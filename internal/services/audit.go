package services

import (
	"encoding/json"

	"github.com/quickbites/backend/internal/models"
	"gorm.io/gorm"
)

// AuditService appends to the review audit trail. Entries are write-once;
// nothing here updates or deletes them.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditActor identifies who performed an action. UserID is nil for
// system-initiated actions (auto-flagging).
type AuditActor struct {
	UserID *uint
	Role   string
}

// Log appends one entry. Pass the surrounding transaction so the entry
// commits or rolls back with the state change it records.
func (s *AuditService) Log(tx *gorm.DB, reviewID uint, actionType string, actor AuditActor, details map[string]interface{}, ip, deviceFingerprint string) error {
	if tx == nil {
		tx = s.db
	}

	var detailsJSON string
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = string(b)
		}
	}

	entry := models.ReviewAuditLog{
		ReviewID:          reviewID,
		ActionType:        actionType,
		PerformedByID:     actor.UserID,
		PerformedByRole:   actor.Role,
		Details:           detailsJSON,
		IPAddress:         ip,
		DeviceFingerprint: deviceFingerprint,
	}
	return tx.Create(&entry).Error
}

// ReviewHistory returns the trail for one review, newest first.
func (s *AuditService) ReviewHistory(reviewID uint) ([]models.ReviewAuditLog, error) {
	var entries []models.ReviewAuditLog
	err := s.db.Where("review_id = ?", reviewID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

type AuditFilter struct {
	ReviewID    uint
	ActionType  string
	PerformerID uint
}

// List returns audit entries for admins, filtered and paginated, newest first.
func (s *AuditService) List(filter AuditFilter, page, limit int) ([]models.ReviewAuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := s.db.Model(&models.ReviewAuditLog{})
	if filter.ReviewID != 0 {
		query = query.Where("review_id = ?", filter.ReviewID)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.PerformerID != 0 {
		query = query.Where("performed_by_id = ?", filter.PerformerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ReviewAuditLog
	err := query.Order("created_at DESC, id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&entries).Error
	return entries, total, err
}
