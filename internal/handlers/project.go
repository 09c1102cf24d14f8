package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/authz"
	"github.com/taskward-dev/taskward/internal/models"
	"github.com/taskward-dev/taskward/internal/store"
	"github.com/taskward-dev/taskward/internal/types"
	"github.com/taskward-dev/taskward/internal/utils"
)

type ProjectHandler struct {
	store *store.Store
}

func NewProjectHandler(s *store.Store) *ProjectHandler {
	return &ProjectHandler{store: s}
}

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Client      string     `json:"client"`
}

type UpdateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Client      string     `json:"client"`
}

type CollaboratorEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RemoveCollaboratorRequest struct {
	ID uint `json:"id" binding:"required"`
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
		Deadline:    body.Deadline,
		Client:      body.Client,
		CreatorID:   userID,
	}

	if err := h.store.CreateProject(&project); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, projectSummary(&project))
}

// List returns every project the user created or collaborates on, without
// task lists.
func (h *ProjectHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := h.store.ProjectsFor(userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.ProjectSummary, 0, len(projects))

	for i := range projects {
		response = append(response, projectSummary(&projects[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": response})
}

func (h *ProjectHandler) Get(ctx *gin.Context) {
	userID, project, ok := h.loadProject(ctx)

	if !ok {
		return
	}

	if !authz.CanView(userID, project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func (h *ProjectHandler) Update(ctx *gin.Context) {
	userID, project, ok := h.loadProject(ctx)

	if !ok {
		return
	}

	if !authz.CanManage(userID, project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Name != "" {
		project.Name = body.Name
	}
	if body.Description != "" {
		project.Description = body.Description
	}
	if body.Deadline != nil {
		project.Deadline = body.Deadline
	}
	if body.Client != "" {
		project.Client = body.Client
	}

	if err := h.store.SaveProject(project); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projectSummary(project))
}

func (h *ProjectHandler) Delete(ctx *gin.Context) {
	userID, project, ok := h.loadProject(ctx)

	if !ok {
		return
	}

	if !authz.CanManage(userID, project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	if err := h.store.DeleteProject(project.ID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// SearchCollaborator looks a user up by email before inviting them.
func (h *ProjectHandler) SearchCollaborator(ctx *gin.Context) {
	var body CollaboratorEmailRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.store.UserByEmail(strings.ToLower(strings.TrimSpace(body.Email)))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func (h *ProjectHandler) AddCollaborator(ctx *gin.Context) {
	userID, project, ok := h.loadProject(ctx)

	if !ok {
		return
	}

	if !authz.CanManage(userID, project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	var body CollaboratorEmailRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	collaborator, err := h.store.UserByEmail(strings.ToLower(strings.TrimSpace(body.Email)))

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := authz.CheckAddCollaborator(project, collaborator.ID); err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.store.AddCollaborator(project.ID, collaborator.ID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Collaborator added successfully"})
}

func (h *ProjectHandler) RemoveCollaborator(ctx *gin.Context) {
	userID, project, ok := h.loadProject(ctx)

	if !ok {
		return
	}

	if !authz.CanManage(userID, project) {
		respondError(ctx, apperr.ErrForbidden)
		return
	}

	var body RemoveCollaboratorRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.store.RemoveCollaborator(project.ID, body.ID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Collaborator removed successfully"})
}

// loadProject resolves the authenticated user and the :id path parameter,
// writing the failure response itself. A malformed id fails with NotFound
// before any query runs.
func (h *ProjectHandler) loadProject(ctx *gin.Context) (uint, *models.Project, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, nil, false
	}

	projectID, err := store.ParseID(ctx.Param("id"))

	if err != nil {
		respondError(ctx, err)
		return 0, nil, false
	}

	project, err := h.store.ProjectByID(projectID)

	if err != nil {
		respondError(ctx, err)
		return 0, nil, false
	}

	return userID, project, true
}
