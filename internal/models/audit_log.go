package models

// AuditLog is one mutating request, keyed by the resource it touched. The
// same entry is published as a domain event.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string `gorm:"size:64;not null" json:"action"`
	ResourceType string `gorm:"size:64;not null;index:idx_audit_logs_resource" json:"resource_type"`
	ResourceID   string `gorm:"size:36;index:idx_audit_logs_resource" json:"resource_id"`
	IPAddress    string `gorm:"size:45" json:"ip_address"`
	// Changes is a JSON object of the fields the request set.
	Changes string `json:"changes,omitempty"`
}
