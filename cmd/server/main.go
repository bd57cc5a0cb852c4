package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arafatr/linkup/backend/internal/router"
	"github.com/arafatr/linkup/backend/pkg/config"
	"github.com/arafatr/linkup/backend/pkg/firebase"
	"github.com/arafatr/linkup/backend/pkg/storage"
	"github.com/arafatr/linkup/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	firebaseAuth, err := firebase.NewAuthClient(context.Background(), cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	storageClient, err := storage.NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	e := echo.New()
	router.SetupMiddleware(e)
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, cfg, db, firebaseAuth, storageClient)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped.")
}
