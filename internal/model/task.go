package model

import "time"

// Task is owned by OwnerID and visible to the owner plus everyone in
// CollaboratorIDs. DueDate is optional; a task without one never appears in
// the today/tomorrow/upcoming filters. ProjectID is optional; a nil value
// means the task is personal, not scoped to any project.
type Task struct {
	ID              int        `json:"id"`
	OwnerID         int        `json:"owner_id"`
	ProjectID       *int       `json:"project_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Status          Status     `json:"status"`
	CollaboratorIDs []int      `json:"collaborator_ids"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// VisibleTo reports whether userID may see the task.
func (t *Task) VisibleTo(userID int) bool {
	if t.OwnerID == userID {
		return true
	}
	for _, id := range t.CollaboratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
