package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/cache"
	"github.com/Dias221467/Message_Catalog/internal/config"
	"github.com/Dias221467/Message_Catalog/internal/database"
	"github.com/Dias221467/Message_Catalog/internal/handlers"
	"github.com/Dias221467/Message_Catalog/internal/jobs"
	"github.com/Dias221467/Message_Catalog/internal/scheduler"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/email"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/Dias221467/Message_Catalog/pkg/middleware"
	"github.com/rs/cors"
)

const (
	authRequestsPerMinute = 20
	authBurst             = 5
	shutdownTimeout       = 15 * time.Second
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	stores, err := database.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	var categoryCache services.CategoryCache
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, category cache disabled")
		} else {
			defer client.Close()
			categoryCache = cache.NewCategoryCache(client, cfg.CacheTTL)
		}
	}

	var mailer services.Mailer
	if sender := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword); sender.Enabled() {
		mailer = sender
	} else {
		logger.Log.Warn("SMTP not configured, outgoing email disabled")
	}

	// --- Services ---
	activityService := services.NewActivityService(stores.Activities)
	notificationService := services.NewNotificationService(stores.Notifications, stores.CategoryStores()...)
	userService := services.NewUserService(stores.Users, mailer, cfg.AppURL)

	hub := handlers.NewNotificationHub(cfg.JWTSecret, cfg.AllowedOrigins)
	notificationService.SetPublisher(hub)

	// --- Handlers ---
	var categoryHandlers []*handlers.CategoryHandler
	var moderation []*services.ModerationService
	for _, store := range stores.CategoryStores() {
		policy := services.NewTaxonomyPolicy(store.Taxonomy(), cfg.ImportDefault(store.Taxonomy()))
		categoryService := services.NewCategoryService(store, policy, notificationService, activityService, categoryCache)
		moderationService := services.NewModerationService(store, notificationService, activityService, categoryCache)
		importService := services.NewImportService(store, policy, activityService, categoryCache, services.ImportOptions{
			BatchSize: cfg.ImportBatchSize,
			Timeout:   cfg.ImportTimeout,
		})

		moderation = append(moderation, moderationService)
		categoryHandlers = append(categoryHandlers,
			handlers.NewCategoryHandler(categoryService, moderationService, importService, cfg.ImportMaxBytes))
	}

	authLimiter := middleware.NewRateLimiter(authRequestsPerMinute, authBurst)
	defer authLimiter.Stop()

	router := handlers.NewRouter(handlers.Routes{
		JWTSecret:     cfg.JWTSecret,
		Categories:    categoryHandlers,
		Notifications: handlers.NewNotificationHandler(notificationService),
		Hub:           hub,
		Activities:    handlers.NewActivityHandler(activityService),
		Users:         handlers.NewUserHandler(userService, cfg),
		AuthLimiter:   authLimiter,
	})

	// --- Background jobs ---
	var digest *jobs.ReviewDigest
	if mailer != nil {
		digest = jobs.NewReviewDigest(userService, mailer, moderation...)
	}
	cronRunner, err := scheduler.Start(notificationService, digest, scheduler.Options{
		NotificationRetention: cfg.NotificationRetention,
		DigestSchedule:        cfg.DigestSchedule,
	})
	if err != nil {
		log.Fatalf("Scheduler error: %v", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Server running on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	<-cronRunner.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := stores.Close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Storage disconnect failed")
	}
}
