package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskward-dev/taskward/internal/config"
	"github.com/taskward-dev/taskward/internal/handlers"
	"github.com/taskward-dev/taskward/internal/middleware"
	"github.com/taskward-dev/taskward/internal/realtime"
	"github.com/taskward-dev/taskward/internal/services"
	"github.com/taskward-dev/taskward/internal/store"
	"github.com/taskward-dev/taskward/pkg/logger"
)

func NewRouter(cfg *config.Config, st *store.Store, hub *realtime.Hub, mailer *services.Mailer) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	userHandler := handlers.NewUserHandler(st, mailer)
	projectHandler := handlers.NewProjectHandler(st)
	taskHandler := handlers.NewTaskHandler(st)
	wsHandler := handlers.NewWSHandler(hub, st, cfg.CORS.AllowedOrigins)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), wsHandler.Serve)

		users := api.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.GET("/confirm/:token", userHandler.Confirm)
			users.POST("/forgot-password", userHandler.ForgotPassword)
			users.GET("/forgot-password/:token", userHandler.VerifyResetToken)
			users.POST("/forgot-password/:token", userHandler.ResetPassword)
			users.GET("/profile", middleware.AuthMiddleware(), userHandler.Profile)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.GET("", projectHandler.List)
			projects.POST("", projectHandler.Create)
			projects.GET("/:id", projectHandler.Get)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.POST("/collaborators", projectHandler.SearchCollaborator)
			projects.POST("/collaborators/:id", projectHandler.AddCollaborator)
			projects.POST("/delete-collaborator/:id", projectHandler.RemoveCollaborator)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("", taskHandler.Create)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
			tasks.POST("/state/:id", taskHandler.ToggleState)
		}
	}

	return r
}
