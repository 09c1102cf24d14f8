package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/authz"
	"github.com/taskward-dev/taskward/internal/models"
	"github.com/taskward-dev/taskward/internal/store"
	"github.com/taskward-dev/taskward/internal/utils"
)

type TaskHandler struct {
	store *store.Store
}

func NewTaskHandler(s *store.Store) *TaskHandler {
	return &TaskHandler{store: s}
}

type CreateTaskRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Deadline    *time.Time `json:"deadline"`
	Project     uint       `json:"project" binding:"required"`
}

type UpdateTaskRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Deadline    *time.Time `json:"deadline"`
}

// Create adds a task to a project. Only the project creator may do this.
func (h *TaskHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.store.ProjectByID(body.Project)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if !authz.CanManage(userID, project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	priority := body.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := models.Task{
		Name:        body.Name,
		Description: body.Description,
		Priority:    priority,
		Deadline:    body.Deadline,
		ProjectID:   project.ID,
	}

	if err := h.store.CreateTask(&task); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"task": taskResponse(&task, project)})
}

func (h *TaskHandler) Get(ctx *gin.Context) {
	userID, task, ok := h.loadTask(ctx)

	if !ok {
		return
	}

	if !authz.CanView(userID, &task.Project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": taskResponse(task, &task.Project)})
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	userID, task, ok := h.loadTask(ctx)

	if !ok {
		return
	}

	if !authz.CanManage(userID, &task.Project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Name != "" {
		task.Name = body.Name
	}
	if body.Description != "" {
		task.Description = body.Description
	}
	if body.Priority != "" {
		task.Priority = body.Priority
	}
	if body.Deadline != nil {
		task.Deadline = body.Deadline
	}

	if err := h.store.SaveTask(task); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": taskResponse(task, &task.Project)})
}

// Delete removes the task from storage and, by the same stroke, from its
// project's task list.
func (h *TaskHandler) Delete(ctx *gin.Context) {
	userID, task, ok := h.loadTask(ctx)

	if !ok {
		return
	}

	if !authz.CanManage(userID, &task.Project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	if err := h.store.DeleteTask(task); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// ToggleState flips the completion flag. Collaborators may do this even
// though they cannot edit the task itself.
func (h *TaskHandler) ToggleState(ctx *gin.Context) {
	userID, task, ok := h.loadTask(ctx)

	if !ok {
		return
	}

	if !authz.CanToggleTask(userID, &task.Project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	updated, err := h.store.ToggleTaskState(task.ID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": taskResponse(updated, &updated.Project)})
}

// loadTask resolves the authenticated user and the :id path parameter,
// writing the failure response itself. The task's project is loaded with
// its collaborator set so authorization checks need no further queries.
func (h *TaskHandler) loadTask(ctx *gin.Context) (uint, *models.Task, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, nil, false
	}

	taskID, err := store.ParseID(ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return 0, nil, false
	}

	task, err := h.store.TaskByID(taskID)

	if err != nil {
		respondError(ctx, err)
		return 0, nil, false
	}

	return userID, task, true
}
