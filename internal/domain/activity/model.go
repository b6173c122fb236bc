package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeRecordCreated   ActivityType = "record_created"
	TypeRecordUpdated   ActivityType = "record_updated"
	TypeRecordApproved  ActivityType = "record_approved"
	TypeModuleSynced    ActivityType = "module_synced"
	TypeExportCompleted ActivityType = "export_completed"
	TypeExportFailed    ActivityType = "export_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id,omitempty"`
	Module       string       `json:"module"`
	RecordID     *string      `json:"record_id,omitempty"`
	Actor        string       `json:"actor,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
