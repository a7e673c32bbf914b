package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"pennyjar/internal/config"
	"pennyjar/internal/database"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/service"
)

// One-shot allowance sweep, for cron setups that prefer an external
// scheduler over the in-process one.
func main() {
	asOf := flag.String("as-of", "", "Run the sweep as of this RFC3339 time (default: now)")
	flag.Parse()

	now := time.Now()
	if *asOf != "" {
		parsed, err := time.Parse(time.RFC3339, *asOf)
		if err != nil {
			log.Fatalf("Invalid -as-of time: %v", err)
		}
		now = parsed
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	pushService, err := service.NewPushService(cfg.AWSRegion, cfg.SNSPlatformARN)
	if err != nil {
		log.Fatalf("Failed to initialize push service: %v", err)
	}
	notificationService := service.NewNotificationService(notificationRepo, pushService)
	achievementService := service.NewAchievementService(badgeRepo, childRepo, notificationService)
	savingsService := service.NewSavingsService(goalRepo, childRepo, userRepo, notificationService, achievementService)
	allowanceService := service.NewAllowanceService(childRepo, savingsService, notificationService)

	result, err := allowanceService.RunDailySweep(now)
	if err != nil {
		log.Fatalf("Allowance sweep failed: %v", err)
	}

	fmt.Printf("Allowance sweep at %s: paid=%d skipped=%d failed=%d\n",
		now.Format(time.RFC3339), result.Paid, result.Skipped, result.Failed)

	// Housekeeping while we have a connection open
	tokenManager := security.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(userRepo, childRepo, tokenManager, cfg.RefreshTokenTTL)
	if err := authService.CleanupExpiredTokens(); err != nil {
		log.Printf("Token cleanup failed: %v", err)
	}
}
