package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/config"
	"github.com/spread-puzzle/puzzle-board-api/internal/database"
	"github.com/spread-puzzle/puzzle-board-api/internal/handlers"
	"github.com/spread-puzzle/puzzle-board-api/internal/middleware"
	"github.com/spread-puzzle/puzzle-board-api/internal/repository"
	"github.com/spread-puzzle/puzzle-board-api/internal/services"
	"github.com/spread-puzzle/puzzle-board-api/internal/storage"
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

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	stepRepo := repository.NewStepRepository(db)

	// Initialize external clients
	store, err := storage.NewS3Storage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	mailer, err := services.NewGomailMailer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	analyzer := services.NewAnalysisService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	roomService := services.NewRoomService(cfg)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	teamService := services.NewTeamService(teamRepo)
	invitationService := services.NewInvitationService(invitationRepo, teamService, authService, mailer, cfg.FrontendURL)
	boardService := services.NewBoardService(boardRepo, teamRepo)
	stepService := services.NewStepService(stepRepo, analyzer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.FrontendURL)
	teamHandler := handlers.NewTeamHandler(teamService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, authService)
	boardHandler := handlers.NewBoardHandler(boardService, store)
	stepHandler := handlers.NewStepHandler(stepService, roomService, store)
	roomHandler := handlers.NewRoomHandler(roomService, authService)
	uploadHandler := handlers.NewUploadHandler(store)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.GinMode,
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.GET("/google", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth(authService))
		{
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListMyTeams)
			teams.GET("/:id/members", middleware.RequireTeamAccess("id"), teamHandler.ListMembers)
			teams.PATCH("/:id", middleware.RequireTeamAccess("id"), teamHandler.RenameTeam)
			teams.DELETE("/:id", middleware.RequireTeamAccess("id"), teamHandler.DeleteTeam)
			teams.POST("/:id/invitations", middleware.RequireTeamAccess("id"), invitationHandler.Invite)
		}

		// Invitation routes (public except accept-as-user: the email link
		// flows are reachable before the invitee has a session)
		invitations := api.Group("/invitations")
		{
			invitations.GET("/:id", invitationHandler.GetInvitation)
			invitations.POST("/:id/accept", middleware.RequireAuth(authService), invitationHandler.Accept)
			invitations.POST("/:id/accept-link", invitationHandler.AcceptByLink)
			invitations.POST("/:id/decline", invitationHandler.Decline)
		}

		// Board routes (protected)
		boards := api.Group("/boards")
		boards.Use(middleware.RequireAuth(authService))
		{
			boards.POST("/team/:teamId", middleware.RequireTeamAccess("teamId"), boardHandler.CreateBoard)
			boards.GET("/team/:teamId", middleware.RequireTeamAccess("teamId"), boardHandler.ListTeamBoards)
			boards.GET("/mine", boardHandler.ListMyBoards)
			boards.GET("/liked", boardHandler.ListLikedBoards)
			boards.GET("/:id", middleware.RequireBoardAccess("id"), boardHandler.GetBoard)
			boards.PATCH("/:id", middleware.RequireBoardAccess("id"), boardHandler.UpdateBoard)
			boards.DELETE("/:id", middleware.RequireBoardAccess("id"), boardHandler.DeleteBoard)
			boards.POST("/:id/like", middleware.RequireBoardAccess("id"), boardHandler.ToggleLike)
			boards.GET("/:id/current-step", middleware.RequireBoardAccess("id"), boardHandler.GetCurrentStep)
			boards.PATCH("/:id/current-step", middleware.RequireBoardAccess("id"), boardHandler.UpdateCurrentStep)
		}

		// Step workflow routes (protected + room token checked in handler)
		steps := api.Group("/steps")
		steps.Use(middleware.RequireAuth(authService))
		{
			steps.POST("/:boardId/:stepNumber", middleware.RequireBoardAccess("boardId"), stepHandler.RecordStepImage)
			steps.GET("/:boardId/result", middleware.RequireBoardAccess("boardId"), stepHandler.GetResult)
		}

		// Collaboration room routes (protected)
		rooms := api.Group("/rooms")
		rooms.Use(middleware.RequireAuth(authService))
		{
			rooms.POST("/:boardId/authorize", middleware.RequireBoardAccess("boardId"), roomHandler.Authorize)
		}

		// Standalone upload route (protected)
		uploads := api.Group("/uploads")
		uploads.Use(middleware.RequireAuth(authService))
		{
			uploads.POST("", uploadHandler.UploadImage)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
