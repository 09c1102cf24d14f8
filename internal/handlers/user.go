package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskward-dev/taskward/internal/auth"
	"github.com/taskward-dev/taskward/internal/models"
	"github.com/taskward-dev/taskward/internal/services"
	"github.com/taskward-dev/taskward/internal/store"
	"github.com/taskward-dev/taskward/internal/types"
	"github.com/taskward-dev/taskward/internal/utils"
	"github.com/taskward-dev/taskward/pkg/logger"
)

type UserHandler struct {
	store  *store.Store
	mailer *services.Mailer
}

func NewUserHandler(s *store.Store, mailer *services.Mailer) *UserHandler {
	return &UserHandler{store: s, mailer: mailer}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates an unconfirmed account and emails a single-use
// confirmation token.
func (h *UserHandler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	passwordHash, err := auth.HashPassword(body.Password)

	if err != nil {
		respondError(ctx, err)
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(body.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Token:        auth.NewSingleUseToken(),
	}

	if err := h.store.CreateUser(&user); err != nil {
		respondError(ctx, err)
		return
	}

	go func() {
		if err := h.mailer.SendConfirmation(user.Name, user.Email, user.Token); err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("failed to send confirmation email")
		}
	}()

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Your account has been created successfully. Check your email and confirm your account",
	})
}

// Login authenticates a confirmed user and returns a signed session token.
func (h *UserHandler) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	user, err := h.store.UserByEmail(email)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if !user.Confirmed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Your account has not been confirmed"})
		return
	}

	if !auth.CheckPassword(body.Password, user.PasswordHash) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  userResponse(user),
		"token": token,
	})
}

// Confirm consumes a confirmation token. The token is cleared on success,
// so a second use fails with an invalid-token error.
func (h *UserHandler) Confirm(ctx *gin.Context) {
	user, err := h.store.UserByToken(ctx.Param("token"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	user.Confirmed = true
	user.Token = ""

	if err := h.store.SaveUser(user); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User confirmed successfully"})
}

// ForgotPassword issues a fresh single-use token, reusing the same field as
// the confirmation flow, and emails a reset link.
func (h *UserHandler) ForgotPassword(ctx *gin.Context) {
	var body ForgotPasswordRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	user, err := h.store.UserByEmail(email)

	if err != nil {
		respondError(ctx, err)
		return
	}

	user.Token = auth.NewSingleUseToken()

	if err := h.store.SaveUser(user); err != nil {
		respondError(ctx, err)
		return
	}

	go func() {
		if err := h.mailer.SendPasswordReset(user.Name, user.Email, user.Token); err != nil {
			logger.Error().Err(err).Str("email", user.Email).Msg("failed to send reset email")
		}
	}()

	ctx.JSON(http.StatusOK, gin.H{
		"message": "An email with the instructions has been sent. Please check your inbox",
	})
}

// VerifyResetToken checks a reset token without consuming it, so the
// frontend can show the new-password form only for valid links.
func (h *UserHandler) VerifyResetToken(ctx *gin.Context) {
	if _, err := h.store.UserByToken(ctx.Param("token")); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Valid token"})
}

// ResetPassword sets a new password and consumes the reset token.
func (h *UserHandler) ResetPassword(ctx *gin.Context) {
	var body ResetPasswordRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.store.UserByToken(ctx.Param("token"))

	if err != nil {
		respondError(ctx, err)
		return
	}

	passwordHash, err := auth.HashPassword(body.Password)

	if err != nil {
		respondError(ctx, err)
		return
	}

	user.PasswordHash = passwordHash
	user.Token = ""

	if err := h.store.SaveUser(user); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Your password has been modified successfully"})
}

func (h *UserHandler) Profile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:    currentUser.ID,
			Name:  currentUser.Name,
			Email: currentUser.Email,
		},
	})
}
