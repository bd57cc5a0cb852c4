package router

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/arafatr/linkup/backend/internal/handlers"
	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/arafatr/linkup/backend/internal/repositories"
	"github.com/arafatr/linkup/backend/internal/ws"
	"github.com/arafatr/linkup/backend/pkg/config"
	"github.com/arafatr/linkup/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client, storageClient *storage.MinioClient) {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.Notification{},
		&models.Reaction{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	friendRequestRepo := repositories.NewMongoFriendRequestRepository(mongoDB)
	groupRepo := repositories.NewMongoGroupRepository(mongoDB)
	messageRepo := repositories.NewMongoMessageRepository(mongoDB)
	eventRepo := repositories.NewMongoEventRepository(mongoDB)
	listingRepo := repositories.NewMongoListingRepository(mongoDB)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	reactionRepo := repositories.NewPostgresReactionRepository(db.Postgres)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for name, idx := range map[string]interface{ EnsureIndexes(context.Context) error }{
		"users":          userRepo,
		"posts":          postRepo,
		"comments":       commentRepo,
		"friendrequests": friendRequestRepo,
		"groups":         groupRepo,
		"messages":       messageRepo,
		"events":         eventRepo,
		"listings":       listingRepo,
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create %s indexes: %v", name, err)
		}
	}
	log.Println("MongoDB indexes ensured.")

	// --- Realtime hub ---
	hub := ws.NewHub(db.Redis, userRepo)
	go hub.Run()
	notifier := handlers.NewNotifier(notificationRepo, hub)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authHandler.RegisterProtectedAuthRoutes(api)
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, friendRequestRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Friendship routes
	friendshipHandler := handlers.NewFriendshipHandler(friendRequestRepo, userRepo, notifier)
	friendshipHandler.RegisterFriendshipRoutes(api)
	log.Println("Friendship routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, commentRepo, userRepo, groupRepo, reactionRepo, notifier)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, reactionRepo, notifier)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Messaging routes
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, hub, notifier)
	messageHandler.RegisterMessageRoutes(api)
	log.Println("Message routes configured.")

	// Group routes
	groupHandler := handlers.NewGroupHandler(groupRepo, postRepo, notifier)
	groupHandler.RegisterGroupRoutes(api)
	log.Println("Group routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Event routes
	eventHandler := handlers.NewEventHandler(eventRepo)
	eventHandler.RegisterEventRoutes(api)
	log.Println("Event routes configured.")

	// Marketplace routes
	listingHandler := handlers.NewListingHandler(listingRepo)
	listingHandler.RegisterListingRoutes(api)
	log.Println("Marketplace routes configured.")

	// Upload routes
	uploadHandler := handlers.NewUploadHandler(storageClient)
	uploadHandler.RegisterUploadRoutes(api)
	log.Println("Upload routes configured.")

	// WebSocket endpoint: authenticated via token query parameter
	wsGroup := e.Group("")
	wsGroup.Use(middleware.WSAuthMiddleware(cfg.JWTSecret))
	wsHandler := handlers.NewWSHandler(hub)
	wsHandler.RegisterWSRoutes(wsGroup)
	log.Println("WebSocket endpoint configured.")

	log.Println("All routes configured.")
}
