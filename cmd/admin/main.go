package main

import (
	"fmt"
	"log"
	"os"

	"smartcomplaint/backend/internal/auth"
	"smartcomplaint/backend/internal/config"
	"smartcomplaint/backend/internal/logger"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/stats"
	"smartcomplaint/backend/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil, zlog) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: create-admin <username> <email> <password> | promote <username> | remind")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "create-admin":
		if len(os.Args) != 5 {
			fmt.Println("Usage: admin create-admin <username> <email> <password>")
			os.Exit(1)
		}
		if err := createAdmin(storageSvc, os.Args[2], os.Args[3], os.Args[4]); err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s has been created.\n", os.Args[2])
	case "promote":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin promote <username>")
			os.Exit(1)
		}
		if err := promote(db, os.Args[2]); err != nil {
			log.Fatalf("Error promoting user: %v", err)
		}
		fmt.Printf("User %s is now an admin.\n", os.Args[2])
	case "remind":
		fanout := notify.NewFanout(storageSvc, zlog)
		statsSvc := stats.NewService(storageSvc, fanout, zlog)
		statsSvc.ReminderDays = cfg.ReminderDays

		sent, err := statsSvc.CheckReminders(&models.User{IsAdmin: true})
		if err != nil {
			log.Fatalf("Error running reminder sweep: %v", err)
		}
		fmt.Printf("Sent %d reminders.\n", sent)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func createAdmin(s storage.Storage, username, email, password string) error {
	if existing, err := s.GetUserByUsername(username); err != nil {
		return err
	} else if existing != nil {
		return auth.ErrUsernameExists
	}
	if existing, err := s.GetUserByEmail(email); err != nil {
		return err
	} else if existing != nil {
		return auth.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.CreateUser(&models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
}

func promote(db *gorm.DB, username string) error {
	result := db.Model(&models.User{}).Where("username = ?", username).Update("is_admin", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s not found", username)
	}
	return nil
}
