package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nopass0/hh-autopilot/internal/config"
	"github.com/Nopass0/hh-autopilot/internal/database"
	"github.com/Nopass0/hh-autopilot/internal/headhunter"
	"github.com/Nopass0/hh-autopilot/internal/oracle"
	"github.com/Nopass0/hh-autopilot/internal/repository"
	"github.com/Nopass0/hh-autopilot/internal/service"
	"github.com/Nopass0/hh-autopilot/internal/session"
	"github.com/Nopass0/hh-autopilot/internal/telegram"
	"github.com/Nopass0/hh-autopilot/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	log.Println("Database connected successfully")

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(db); err != nil {
		return err
	}
	log.Println("Migrations completed successfully")

	// Initialize repositories
	vacancyRepo := repository.NewVacancyRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	negotiationRepo := repository.NewNegotiationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	tagRepo := repository.NewSearchTagRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Initialize clients
	sessionManager := session.NewManager(cfg.HHClientID, cfg.HHClientSecret, tokenRepo)
	platformClient := headhunter.NewClient()
	oracleClient := oracle.NewClient(cfg.OpenRouterAPIKey)

	var notifier service.Notifier
	if cfg.TelegramToken != "" {
		tg, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		notifier = tg
		log.Println("Telegram notifications enabled")
	}

	profile := service.NewProfileProvider(cfg.Profile)

	// Initialize services
	pipeline := service.NewPipeline(
		cfg,
		platformClient,
		oracleClient,
		vacancyRepo,
		applicationRepo,
		negotiationRepo,
		messageRepo,
		tagRepo,
		activityRepo,
		statsRepo,
		profile,
		notifier,
	)
	monitor := service.NewMonitor(
		platformClient,
		oracleClient,
		vacancyRepo,
		negotiationRepo,
		messageRepo,
		activityRepo,
		statsRepo,
		profile,
		notifier,
	)

	// Initialize watcher
	w := watcher.New(cfg, sessionManager, pipeline, monitor)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start watcher in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutdown signal received")
		cancel()

		// Wait for graceful shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		select {
		case <-shutdownCtx.Done():
			log.Println("Shutdown timeout exceeded")
		case err := <-errChan:
			if err != nil && err != context.Canceled {
				log.Printf("Watcher error: %v", err)
			}
		}

		log.Println("Application stopped")
		return nil

	case err := <-errChan:
		return err
	}
}
