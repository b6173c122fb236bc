package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ProjectID    string        `form:"project_id"`
	Module       string        `form:"module"`
	RecordID     *string       `form:"record_id"`
	ActivityType *ActivityType `form:"type"`
	Limit        int           `form:"limit"`
	Offset       int           `form:"offset"`
}
