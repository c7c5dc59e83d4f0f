package main

import (
	"flag"
	"fmt"
	"os"

	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/logger"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

// seed creates the default category tree for existing users. Seeding is
// idempotent, so it is safe to rerun after adding new defaults.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	email := flag.String("email", "", "seed only the user with this email")
	all := flag.Bool("all", false, "seed every user")
	flag.Parse()

	if err := run(*email, *all); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run(email string, all bool) error {
	if (email == "") == !all {
		return fmt.Errorf("usage: seed -email <address> | -all")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = manager.Close() }()

	db := manager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db, services.NewReassignmentService())

	var userIDs []string
	if all {
		if err := db.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
	} else {
		user, err := userService.GetUserByEmail(email)
		if err != nil {
			return fmt.Errorf("failed to find user %s: %w", email, err)
		}
		userIDs = append(userIDs, user.ID)
	}

	for _, id := range userIDs {
		if err := categoryService.SeedDefaults(id); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", id, err)
		}
	}
	logger.Get().Infow("seeding complete", "users", len(userIDs))
	return nil
}
