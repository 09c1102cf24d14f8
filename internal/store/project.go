package store

import (
	"errors"
	"fmt"

	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateProject(project *models.Project) error {
	return s.db.Create(project).Error
}

// ProjectByID loads a project with its collaborators (and their users),
// tasks and task actors resolved, ready for authorization checks and full
// responses.
func (s *Store) ProjectByID(id uint) (*models.Project, error) {
	var project models.Project

	err := s.db.
		Preload("Collaborators.User").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.id ASC")
		}).
		Preload("Tasks.CompletedBy").
		First(&project, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}

	return &project, nil
}

// ProjectsFor lists projects where the user is creator or collaborator.
// Task lists are deliberately not loaded to keep the payload small.
func (s *Store) ProjectsFor(userID uint) ([]models.Project, error) {
	var collaboratorProjectIDs []uint

	err := s.db.Model(&models.ProjectCollaborator{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &collaboratorProjectIDs).Error

	if err != nil {
		return nil, err
	}

	var projects []models.Project

	query := s.db.Where("creator_id = ?", userID)
	if len(collaboratorProjectIDs) > 0 {
		query = s.db.Where("creator_id = ? OR id IN ?", userID, collaboratorProjectIDs)
	}

	if err := query.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// SaveProject persists column changes only; collaborator and task rows are
// managed through their own operations.
func (s *Store) SaveProject(project *models.Project) error {
	return s.db.Omit(clause.Associations).Save(project).Error
}

// DeleteProject removes the project together with everything it owns.
func (s *Store) DeleteProject(id uint) error {
	lock := s.projectLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.db.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return err
	}

	if err := s.db.Where("project_id = ?", id).Delete(&models.ProjectCollaborator{}).Error; err != nil {
		return err
	}

	return s.db.Delete(&models.Project{}, id).Error
}

func (s *Store) AddCollaborator(projectID, userID uint) error {
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	collaborator := models.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    userID,
	}

	if err := s.db.Create(&collaborator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %d already collaborates on project %d: %w", userID, projectID, apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Store) RemoveCollaborator(projectID, userID uint) error {
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectCollaborator{}).Error
}
