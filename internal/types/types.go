package types

import "time"

const ContextUserKey = "user"

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectSummary omits the task list; used by the project listing.
type ProjectSummary struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Client      string     `json:"client,omitempty"`
	CreatorID   uint       `json:"creator_id"`
}

type ProjectResponse struct {
	ProjectSummary
	Collaborators []UserResponse `json:"collaborators"`
	Tasks         []TaskResponse `json:"tasks"`
}

// ProjectRef is the project reference embedded in task payloads, both in
// REST responses and in realtime events.
type ProjectRef struct {
	ID        uint   `json:"id"`
	Name      string `json:"name,omitempty"`
	CreatorID uint   `json:"creator_id,omitempty"`
}

type TaskResponse struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Priority    string        `json:"priority"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	State       bool          `json:"state"`
	CompletedBy *UserResponse `json:"completed_by,omitempty"`
	Project     ProjectRef    `json:"project"`
}
