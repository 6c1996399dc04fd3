package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"smartcomplaint/backend/internal/api/handler"
	"smartcomplaint/backend/internal/auth"
	"smartcomplaint/backend/internal/blobstore"
	"smartcomplaint/backend/internal/complaint"
	"smartcomplaint/backend/internal/config"
	"smartcomplaint/backend/internal/logger"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/notifyhub"
	"smartcomplaint/backend/internal/stats"
	"smartcomplaint/backend/internal/storage"
	"smartcomplaint/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config, zlog *zap.SugaredLogger) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		zlog.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		zlog.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.Attachment{},
		&models.Notification{},
	)
	if err != nil {
		zlog.Fatalf("Failed to run migrations: %v", err)
	}

	zlog.Info("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Starting Smart Complaint Backend...")

	// 1. Dependencies
	db, rdb := setupDependencies(cfg, zlog)
	s := storage.NewStorageService(db, rdb, zlog)

	blobs, err := blobstore.NewDisk(cfg.UploadDir, "/uploads")
	if err != nil {
		zlog.Fatalf("Failed to initialize blob store: %v", err)
	}

	// 2. Services
	fanout := notify.NewFanout(s, zlog)
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		alerter, err := telegram.NewAlerter(cfg.TelegramBotToken, cfg.TelegramAdminChatID, zlog)
		if err != nil {
			zlog.Warnf("WARNING: Telegram alerter disabled: %v", err)
		} else {
			fanout.Alerter = alerter
		}
	}

	authSvc := auth.NewService(s, fanout, zlog, cfg.JWTSecret)
	complaints := complaint.NewService(s, blobs, fanout, zlog)
	statsSvc := stats.NewService(s, fanout, zlog)
	statsSvc.ReminderDays = cfg.ReminderDays

	// 3. Notification hub
	hub := notifyhub.NewHub(rdb, zlog)
	go hub.Run()

	// 4. Gin and routing
	r := gin.Default()
	h := handler.NewHandler(authSvc, complaints, statsSvc, s, hub, blobs, zlog)
	h.SetupRoutes(r)
	r.Static("/uploads", cfg.UploadDir)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	zlog.Infof("Listening on :%s", cfg.Port)
	zlog.Fatal(server.ListenAndServe())
}
