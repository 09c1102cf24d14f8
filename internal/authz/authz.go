// Package authz holds the project access rules. Every function is a pure
// check over already-loaded entities; handlers load state through the store
// and ask here before acting.
package authz

import (
	"fmt"

	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/models"
)

var (
	ErrAlreadyCollaborator = fmt.Errorf("user is already a collaborator on this project: %w", apperr.ErrConflict)
	ErrCreatorCollaborator = fmt.Errorf("the project creator cannot be added as a collaborator: %w", apperr.ErrValidation)
)

// IsCollaborator reports whether userID appears in the project's
// collaborator set. The creator is never part of that set.
func IsCollaborator(userID uint, project *models.Project) bool {
	for _, c := range project.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// CanView allows reading a project and its tasks: creator or collaborator.
func CanView(userID uint, project *models.Project) bool {
	return project.CreatorID == userID || IsCollaborator(userID, project)
}

// CanManage allows reshaping a project: editing metadata, deleting it,
// managing collaborators and creating/editing/deleting tasks. Creator only.
func CanManage(userID uint, project *models.Project) bool {
	return project.CreatorID == userID
}

// CanToggleTask allows flipping a task's completion state. Deliberately
// broader than CanManage: collaborators may mark work done but not reshape
// the project.
func CanToggleTask(userID uint, project *models.Project) bool {
	return project.CreatorID == userID || IsCollaborator(userID, project)
}

// CheckAddCollaborator validates that targetID may be added to the
// project's collaborator set.
func CheckAddCollaborator(project *models.Project, targetID uint) error {
	if project.CreatorID == targetID {
		return ErrCreatorCollaborator
	}
	if IsCollaborator(targetID, project) {
		return ErrAlreadyCollaborator
	}
	return nil
}
