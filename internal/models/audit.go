package models

import "time"

// Audit action types.
const (
	AuditActionCreated     = "created"
	AuditActionUpdated     = "updated"
	AuditActionDeleted     = "deleted"
	AuditActionFlagged     = "flagged"
	AuditActionHidden      = "hidden"
	AuditActionRestored    = "restored"
	AuditActionResponded   = "responded"
	AuditActionApproved    = "approved"
	AuditActionAdminAction = "admin_action"
)

// Audit performer roles.
const (
	AuditRoleUser       = "user"
	AuditRoleRestaurant = "restaurant"
	AuditRoleAdmin      = "admin"
	AuditRoleSystem     = "system"
)

// ReviewAuditLog is append-only: rows are written once and never updated or
// deleted. Every state-changing operation on a review produces exactly one
// entry.
type ReviewAuditLog struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ReviewID   uint   `json:"review_id" gorm:"not null;index:idx_audit_review_created"`
	ActionType string `json:"action_type" gorm:"not null;index"`

	PerformedByID   *uint  `json:"performed_by_id,omitempty" gorm:"index"`
	PerformedByRole string `json:"performed_by_role" gorm:"not null"`

	// Details is a JSON blob with action-specific context.
	Details           string `json:"details,omitempty"`
	IPAddress         string `json:"ip_address,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_audit_review_created"`
}
