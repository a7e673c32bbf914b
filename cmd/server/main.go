package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pennyjar/internal/config"
	"pennyjar/internal/database"
	"pennyjar/internal/handlers"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/service"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	childRepo := repository.NewChildRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	choreRepo := repository.NewChoreRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)

	// AWS-backed services run disabled when unconfigured
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	pushService, err := service.NewPushService(cfg.AWSRegion, cfg.SNSPlatformARN)
	if err != nil {
		log.Fatalf("Failed to initialize push service: %v", err)
	}
	storageService, err := service.NewStorageService(cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	// Services
	tokenManager := security.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(userRepo, childRepo, tokenManager, cfg.RefreshTokenTTL)
	oauthService := service.NewOAuthService(cfg, userRepo, authService)
	familyService := service.NewFamilyService(familyRepo, userRepo, childRepo)
	notificationService := service.NewNotificationService(notificationRepo, pushService)
	achievementService := service.NewAchievementService(badgeRepo, childRepo, notificationService)
	txService := service.NewTransactionService(txRepo, childRepo, budgetRepo, userRepo, notificationService, achievementService)
	savingsService := service.NewSavingsService(goalRepo, childRepo, userRepo, notificationService, achievementService)
	accountService := service.NewSavingsAccountService(childRepo)
	allowanceService := service.NewAllowanceService(childRepo, savingsService, notificationService)
	choreService := service.NewChoreService(choreRepo, childRepo, notificationService, achievementService)
	giftService := service.NewGiftService(giftRepo, goalRepo, childRepo, userRepo, savingsService, notificationService, emailService)
	analyticsService := service.NewAnalyticsService(txRepo, childRepo, goalRepo, badgeRepo)

	// Handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(tokenManager, limiter)
	authHandler := handlers.NewAuthHandler(authService, oauthService, emailService, userRepo)
	familyHandler := handlers.NewFamilyHandler(familyService, storageService, childRepo, cfg.UploadMaxSize)
	txHandler := handlers.NewTransactionHandler(txService, childRepo)
	savingsHandler := handlers.NewSavingsHandler(savingsService, storageService, goalRepo, childRepo, cfg.UploadMaxSize)
	accountHandler := handlers.NewSavingsAccountHandler(accountService, childRepo)
	allowanceHandler := handlers.NewAllowanceHandler(allowanceService, userRepo, childRepo)
	choreHandler := handlers.NewChoreHandler(choreService)
	achievementHandler := handlers.NewAchievementHandler(achievementService, childRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	giftHandler := handlers.NewGiftHandler(giftService, emailService, childRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, childRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)

	// Public auth routes
	mux.HandleFunc("POST /api/v1/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/v1/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/v1/auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/v1/auth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("GET /api/v1/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/v1/auth/password", middleware.RequireAuth(authHandler.ChangePassword))

	// Family
	mux.HandleFunc("POST /api/v1/family", middleware.RequireParent(familyHandler.CreateFamily))
	mux.HandleFunc("POST /api/v1/family/join", middleware.RequireParent(familyHandler.JoinFamily))
	mux.HandleFunc("POST /api/v1/family/leave", middleware.RequireParent(familyHandler.LeaveFamily))
	mux.HandleFunc("GET /api/v1/family", middleware.RequireAuth(familyHandler.GetFamily))
	mux.HandleFunc("PUT /api/v1/family", middleware.RequireParent(familyHandler.RenameFamily))

	// Children
	mux.HandleFunc("POST /api/v1/children", middleware.RequireParent(familyHandler.CreateChild))
	mux.HandleFunc("GET /api/v1/children", middleware.RequireParent(familyHandler.ListChildren))
	mux.HandleFunc("GET /api/v1/children/{id}", middleware.RequireAuth(familyHandler.GetChild))
	mux.HandleFunc("PUT /api/v1/children/{id}", middleware.RequireParent(familyHandler.UpdateChild))
	mux.HandleFunc("DELETE /api/v1/children/{id}", middleware.RequireParent(familyHandler.DeleteChild))
	mux.HandleFunc("POST /api/v1/children/{id}/login", middleware.RequireParent(familyHandler.CreateChildLogin))
	mux.HandleFunc("POST /api/v1/children/{id}/login/reset", middleware.RequireParent(familyHandler.ResetChildPassword))
	mux.HandleFunc("PUT /api/v1/children/{id}/photo", middleware.RequireParent(familyHandler.UploadChildPhoto))
	mux.HandleFunc("GET /api/v1/children/{id}/photo", middleware.RequireAuth(familyHandler.GetChildPhoto))

	// Ledger and budgets
	mux.HandleFunc("POST /api/v1/children/{id}/credit", middleware.RequireParent(txHandler.Credit))
	mux.HandleFunc("POST /api/v1/children/{id}/debit", middleware.RequireParent(txHandler.Debit))
	mux.HandleFunc("GET /api/v1/children/{id}/transactions", middleware.RequireAuth(txHandler.ListTransactions))
	mux.HandleFunc("PUT /api/v1/children/{id}/budgets", middleware.RequireParent(txHandler.SetBudget))
	mux.HandleFunc("GET /api/v1/children/{id}/budgets", middleware.RequireAuth(txHandler.ListBudgets))
	mux.HandleFunc("DELETE /api/v1/children/{id}/budgets/{category}", middleware.RequireParent(txHandler.DeleteBudget))

	// Allowance
	mux.HandleFunc("PUT /api/v1/children/{id}/allowance", middleware.RequireParent(allowanceHandler.UpdateSettings))
	mux.HandleFunc("POST /api/v1/children/{id}/allowance/pause", middleware.RequireParent(allowanceHandler.SetPaused))
	mux.HandleFunc("POST /api/v1/children/{id}/allowance/pay", middleware.RequireParent(allowanceHandler.PayNow))
	mux.HandleFunc("POST /api/v1/admin/allowance/sweep", middleware.RequireParent(allowanceHandler.RunSweep))

	// Savings balance
	mux.HandleFunc("POST /api/v1/children/{id}/savings/deposit", middleware.RequireAuth(accountHandler.Deposit))
	mux.HandleFunc("POST /api/v1/children/{id}/savings/withdraw", middleware.RequireAuth(accountHandler.Withdraw))
	mux.HandleFunc("PUT /api/v1/children/{id}/savings/transfer-percent", middleware.RequireParent(accountHandler.SetTransferPercent))

	// Savings goals
	mux.HandleFunc("POST /api/v1/children/{id}/goals", middleware.RequireAuth(savingsHandler.CreateGoal))
	mux.HandleFunc("GET /api/v1/children/{id}/goals", middleware.RequireAuth(savingsHandler.ListGoals))
	mux.HandleFunc("GET /api/v1/goals/{id}", middleware.RequireAuth(savingsHandler.GetGoal))
	mux.HandleFunc("PUT /api/v1/goals/{id}", middleware.RequireAuth(savingsHandler.UpdateGoal))
	mux.HandleFunc("POST /api/v1/goals/{id}/{action}", middleware.RequireParent(savingsHandler.ChangeGoalStatus))
	mux.HandleFunc("POST /api/v1/goals/{id}/contributions", middleware.RequireAuth(savingsHandler.Contribute))
	mux.HandleFunc("GET /api/v1/goals/{id}/contributions", middleware.RequireAuth(savingsHandler.ListContributions))
	mux.HandleFunc("POST /api/v1/goals/{id}/withdrawals", middleware.RequireParent(savingsHandler.Withdraw))
	mux.HandleFunc("POST /api/v1/goals/{id}/matching-rule", middleware.RequireParent(savingsHandler.SetMatchingRule))
	mux.HandleFunc("DELETE /api/v1/goals/{id}/matching-rule", middleware.RequireParent(savingsHandler.RemoveMatchingRule))
	mux.HandleFunc("POST /api/v1/goals/{id}/challenge", middleware.RequireParent(savingsHandler.CreateChallenge))
	mux.HandleFunc("DELETE /api/v1/goals/{id}/challenge", middleware.RequireParent(savingsHandler.CancelChallenge))
	mux.HandleFunc("PUT /api/v1/goals/{id}/image", middleware.RequireAuth(savingsHandler.UploadGoalImage))
	mux.HandleFunc("GET /api/v1/goals/{id}/image", middleware.RequireAuth(savingsHandler.GetGoalImage))

	// Chores
	mux.HandleFunc("POST /api/v1/chores", middleware.RequireParent(choreHandler.CreateChore))
	mux.HandleFunc("GET /api/v1/chores", middleware.RequireAuth(choreHandler.ListChores))
	mux.HandleFunc("GET /api/v1/chores/{id}", middleware.RequireAuth(choreHandler.GetChore))
	mux.HandleFunc("PUT /api/v1/chores/{id}", middleware.RequireParent(choreHandler.UpdateChore))
	mux.HandleFunc("POST /api/v1/chores/{id}/done", middleware.RequireAuth(choreHandler.MarkDone))
	mux.HandleFunc("POST /api/v1/chores/{id}/approve", middleware.RequireParent(choreHandler.Approve))
	mux.HandleFunc("POST /api/v1/chores/{id}/reject", middleware.RequireParent(choreHandler.Reject))
	mux.HandleFunc("DELETE /api/v1/chores/{id}", middleware.RequireParent(choreHandler.DeleteChore))

	// Achievements
	mux.HandleFunc("GET /api/v1/children/{id}/badges", middleware.RequireAuth(achievementHandler.ListBadges))
	mux.HandleFunc("GET /api/v1/children/{id}/points", middleware.RequireAuth(achievementHandler.GetPoints))
	mux.HandleFunc("POST /api/v1/children/{id}/rewards", middleware.RequireAuth(achievementHandler.PurchaseReward))
	mux.HandleFunc("GET /api/v1/children/{id}/rewards", middleware.RequireAuth(achievementHandler.ListRewards))
	mux.HandleFunc("POST /api/v1/children/{id}/rewards/{rewardId}/equip", middleware.RequireAuth(achievementHandler.EquipReward))
	mux.HandleFunc("POST /api/v1/children/{id}/rewards/{rewardId}/unequip", middleware.RequireAuth(achievementHandler.UnequipReward))

	// Notifications and devices
	mux.HandleFunc("GET /api/v1/notifications", middleware.RequireAuth(notificationHandler.List))
	mux.HandleFunc("GET /api/v1/notifications/unread-count", middleware.RequireAuth(notificationHandler.CountUnread))
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", middleware.RequireAuth(notificationHandler.MarkRead))
	mux.HandleFunc("POST /api/v1/notifications/read-all", middleware.RequireAuth(notificationHandler.MarkAllRead))
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", middleware.RequireAuth(notificationHandler.Delete))
	mux.HandleFunc("POST /api/v1/devices", middleware.RequireAuth(notificationHandler.RegisterDevice))
	mux.HandleFunc("DELETE /api/v1/devices", middleware.RequireAuth(notificationHandler.UnregisterDevice))

	// Gifts
	mux.HandleFunc("POST /api/v1/gift-links", middleware.RequireParent(giftHandler.CreateLink))
	mux.HandleFunc("GET /api/v1/children/{id}/gift-links", middleware.RequireAuth(giftHandler.ListLinks))
	mux.HandleFunc("DELETE /api/v1/gift-links/{id}", middleware.RequireParent(giftHandler.DeactivateLink))
	mux.HandleFunc("GET /api/v1/children/{id}/gifts", middleware.RequireAuth(giftHandler.ListGifts))
	mux.HandleFunc("POST /api/v1/gifts/{id}/thank-you", middleware.RequireAuth(giftHandler.WriteThankYouNote))

	// Public gift endpoints, reachable without an account
	mux.HandleFunc("GET /api/v1/gift/{token}", giftHandler.ResolveLink)
	mux.HandleFunc("POST /api/v1/gift/{token}", middleware.RateLimit(giftHandler.SubmitGift))

	// Analytics
	mux.HandleFunc("GET /api/v1/children/{id}/summary", middleware.RequireAuth(analyticsHandler.ChildSummary))
	mux.HandleFunc("GET /api/v1/family/overview", middleware.RequireParent(analyticsHandler.FamilyOverview))
	mux.HandleFunc("GET /api/v1/children/{id}/spending", middleware.RequireAuth(analyticsHandler.SpendingByCategory))
	mux.HandleFunc("GET /api/v1/children/{id}/balance-history", middleware.RequireAuth(analyticsHandler.BalanceHistory))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Scheduled jobs: daily allowance sweep and refresh token cleanup
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.AllowanceSchedule, func() {
		result, err := allowanceService.RunDailySweep(time.Now())
		if err != nil {
			log.Printf("Allowance sweep failed: %v", err)
			return
		}
		log.Printf("Allowance sweep: paid=%d skipped=%d failed=%d", result.Paid, result.Skipped, result.Failed)
	}); err != nil {
		log.Fatalf("Invalid allowance schedule %q: %v", cfg.AllowanceSchedule, err)
	}
	if _, err := scheduler.AddFunc("30 3 * * *", func() {
		if err := authService.CleanupExpiredTokens(); err != nil {
			log.Printf("Token cleanup failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid token cleanup schedule: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
