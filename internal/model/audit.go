package model

import "time"

// Audit actions emitted by the server. Client events may use any non-empty action.
const (
	ActionVisit    = "visit"
	ActionDownload = "download"

	ActionUploadAccepted = "admin-upload-accepted"
	ActionUploadDenied   = "admin-upload-denied"
	ActionUploadFailed   = "admin-upload-failed"
	ActionUpdateAccepted = "admin-update-accepted"
	ActionUpdateDenied   = "admin-update-denied"
	ActionUpdateFailed   = "admin-update-failed"
	ActionDeleteAccepted = "admin-delete-accepted"
	ActionDeleteDenied   = "admin-delete-denied"
	ActionDeleteFailed   = "admin-delete-failed"
)

// AuditEvent is one append-only record of a visit, download or admin action.
// Optional columns are pointers so that absence is stored as NULL.
type AuditEvent struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	IPAddress *string        `json:"ip_address,omitempty"`
	Path      *string        `json:"path,omitempty"`
	Action    string         `json:"action"`
	FileName  *string        `json:"file_name,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}
