package handlers

import (
	"github.com/taskward-dev/taskward/internal/models"
	"github.com/taskward-dev/taskward/internal/types"
)

func userResponse(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

func projectSummary(p *models.Project) types.ProjectSummary {
	return types.ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Deadline:    p.Deadline,
		Client:      p.Client,
		CreatorID:   p.CreatorID,
	}
}

func projectResponse(p *models.Project) types.ProjectResponse {
	collaborators := make([]types.UserResponse, 0, len(p.Collaborators))
	for i := range p.Collaborators {
		collaborators = append(collaborators, userResponse(&p.Collaborators[i].User))
	}

	tasks := make([]types.TaskResponse, 0, len(p.Tasks))
	for i := range p.Tasks {
		tasks = append(tasks, taskResponse(&p.Tasks[i], p))
	}

	return types.ProjectResponse{
		ProjectSummary: projectSummary(p),
		Collaborators:  collaborators,
		Tasks:          tasks,
	}
}

// taskResponse embeds the owning project reference so realtime subscribers
// and REST clients can route the payload without another fetch.
func taskResponse(t *models.Task, project *models.Project) types.TaskResponse {
	resp := types.TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		State:       t.State,
		Project: types.ProjectRef{
			ID:        project.ID,
			Name:      project.Name,
			CreatorID: project.CreatorID,
		},
	}

	if t.CompletedBy != nil {
		completedBy := userResponse(t.CompletedBy)
		resp.CompletedBy = &completedBy
	}

	return resp
}
