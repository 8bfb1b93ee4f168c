package models

import "time"

// AdminAction enumerates the mutations recorded in the audit trail.
type AdminAction string

const (
	AdminActionCreate      AdminAction = "create"
	AdminActionUpdate      AdminAction = "update"
	AdminActionDelete      AdminAction = "delete"
	AdminActionSyncStart   AdminAction = "sync_start"
	AdminActionSyncPause   AdminAction = "sync_pause"
	AdminActionSyncResume  AdminAction = "sync_resume"
	AdminActionBulkUpdate  AdminAction = "bulk_update"
	AdminActionToggleAvail AdminAction = "toggle_availability"
)

// AdminActivity is an append-only audit record. Rows are never updated or
// deleted after insert.
type AdminActivity struct {
	ID           string      `json:"id"` // uuid
	Actor        string      `json:"actor"`
	Action       AdminAction `json:"action"`
	ResourceType string      `json:"resourceType"`
	ResourceID   string      `json:"resourceId,omitempty"`
	Description  string      `json:"description"`
	Detail       string      `json:"detail,omitempty"` // arbitrary JSON blob
	Success      bool        `json:"success"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	IPAddress    string      `json:"ipAddress,omitempty"`
	UserAgent    string      `json:"userAgent,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}
