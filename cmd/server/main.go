package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/constants"
	"github.com/taskdeck/taskdeck-api/internal/database"
	"github.com/taskdeck/taskdeck-api/internal/handlers"
	"github.com/taskdeck/taskdeck-api/internal/middleware"
	"github.com/taskdeck/taskdeck-api/internal/repository"
	"github.com/taskdeck/taskdeck-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis. Sessions are written by the
	// external identity provider; this service only reads them.
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	var advisor services.SplitAdvisor
	if cfg.OpenAIAPIKey != "" {
		advisor = services.NewOpenAISplitAdvisor(cfg.OpenAIAPIKey)
	}

	hierarchyService := services.NewHierarchyService(db, taskRepo, projectRepo)
	ancestryResolver := services.NewAncestryResolver(db, taskRepo)
	splitService := services.NewSplitService(db, taskRepo, projectRepo, advisor, cfg.AdvisorTimeout)

	// Initialize handlers
	projectHandler := handlers.NewProjectHandler(hierarchyService)
	taskHandler := handlers.NewTaskHandler(hierarchyService, ancestryResolver)
	aiHandler := handlers.NewAIHandler(splitService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskdeck API is running",
		})
	})

	// API routes (protected)
	api := r.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		projects := api.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/active", taskHandler.ListActiveTasks)
			tasks.GET("/unprocessed", taskHandler.ListUnprocessedTasks)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.GET("/:id/ancestry", taskHandler.GetAncestry)
			tasks.POST("/:id/split", aiHandler.SplitTask)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
