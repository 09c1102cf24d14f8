package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/authz"
	"github.com/taskward-dev/taskward/pkg/logger"
)

// respondError translates the error taxonomy into HTTP statuses with short
// messages. Anything outside the taxonomy is an implementation error: it is
// logged and surfaced as a generic failure, never echoed to the client.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrAlreadyCollaborator):
		ctx.JSON(http.StatusConflict, gin.H{"error": "This user has already been added to the project"})
	case errors.Is(err, authz.ErrCreatorCollaborator):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "The project creator cannot be added as a collaborator"})
	case errors.Is(err, apperr.ErrInvalidToken):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Invalid token"})
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	case errors.Is(err, apperr.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Conflict"})
	case errors.Is(err, apperr.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	default:
		logger.Error().Err(err).Str("path", ctx.FullPath()).Msg("internal error")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
