package store

import (
	"errors"
	"fmt"

	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTask stores a task under its project. The existence check and the
// insert run under the project lock so a concurrent project deletion cannot
// leave a task behind.
func (s *Store) CreateTask(task *models.Task) error {
	lock := s.projectLock(task.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	var project models.Project

	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("project %d: %w", task.ProjectID, apperr.ErrNotFound)
		}
		return err
	}

	return s.db.Create(task).Error
}

// TaskByID loads a task with its project, the project's collaborator set
// (needed for authorization) and the last completion actor.
func (s *Store) TaskByID(id uint) (*models.Task, error) {
	var task models.Task

	err := s.db.
		Preload("Project").
		Preload("Project.Collaborators").
		Preload("CompletedBy").
		First(&task, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}

	return &task, nil
}

func (s *Store) SaveTask(task *models.Task) error {
	return s.db.Omit(clause.Associations).Save(task).Error
}

func (s *Store) DeleteTask(task *models.Task) error {
	lock := s.projectLock(task.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Delete(&models.Task{}, task.ID).Error
}

// ToggleTaskState flips the completion flag and records the acting user.
// The actor is overwritten on every toggle, in both directions. The flip
// inverts the column in place, in one statement under the project lock;
// the initial load only resolves the task and its project.
func (s *Store) ToggleTaskState(id uint, actorID uint) (*models.Task, error) {
	task, err := s.TaskByID(id)
	if err != nil {
		return nil, err
	}

	lock := s.projectLock(task.ProjectID)
	lock.Lock()

	updates := map[string]interface{}{
		"state":           gorm.Expr("NOT state"),
		"completed_by_id": actorID,
	}

	err = s.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
	lock.Unlock()

	if err != nil {
		return nil, err
	}

	return s.TaskByID(id)
}
