package project

import "time"

// Project is a construction job whose records are scoped by role.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Portfolio   string    `json:"portfolio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
