package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"taskflow/internal/broadcast"
	"taskflow/internal/config"
	"taskflow/internal/handler"
	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/notification"
	"taskflow/internal/repository"
	"taskflow/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Hub    *broadcast.Hub
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.Comment{},
		&model.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	jwtExpiry := 72 * time.Hour
	if hours, err := strconv.Atoi(cfg.JWTExpiryHrs); err == nil && hours > 0 {
		jwtExpiry = time.Duration(hours) * time.Hour
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := broadcast.NewHub()
	dispatcher := notification.NewDispatcher(notificationRepo, hub)
	notificationSvc := notification.NewService(notificationRepo)
	workflowSvc := workflow.NewService(userRepo, projectRepo, taskRepo, commentRepo, dispatcher, hub)

	authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, jwtExpiry)
	projectHandler := handler.NewProjectHandler(workflowSvc)
	taskHandler := handler.NewTaskHandler(workflowSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	adminHandler := handler.NewAdminHandler(workflowSvc)
	wsHandler := handler.NewWSHandler(hub, workflowSvc)

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authorized := api.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, userRepo))
	{
		authorized.GET("/auth/me", authHandler.Me)

		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.GET("/projects/:id/tasks", taskHandler.ListByProject)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)

		authorized.POST("/tasks/:id/comments", taskHandler.AddComment)
		authorized.DELETE("/tasks/:id/comments/:commentId", taskHandler.DeleteComment)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		authorized.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)

		authorized.GET("/admin/users", adminHandler.ListUsers)
		authorized.PUT("/admin/users/:id/role", adminHandler.UpdateRole)
		authorized.DELETE("/admin/users/:id", adminHandler.DeleteUser)
		authorized.GET("/reports/completed-per-project", adminHandler.CompletedReport)

		authorized.GET("/ws", wsHandler.Serve)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		Engine: r,
		DB:     db,
		Hub:    hub,
		Config: cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
