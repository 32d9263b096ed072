package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantora/fund-management-backend/internal/api"
	"github.com/quantora/fund-management-backend/internal/config"
	"github.com/quantora/fund-management-backend/internal/database"
	"github.com/quantora/fund-management-backend/internal/marketdata"
	"github.com/quantora/fund-management-backend/internal/repository"
	"github.com/quantora/fund-management-backend/internal/scheduler"
	"github.com/quantora/fund-management-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	positionRepo := repository.NewPositionRepository(db)
	tradeRepo := repository.NewAssetTradeRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	costRepo := repository.NewCostRepository(db)
	investorRepo := repository.NewInvestorRepository(db)
	fsTradeRepo := repository.NewFundShareTradeRepository(db)
	requestRepo := repository.NewFundShareRequestRepository(db)
	priceRepo := repository.NewPriceHistoryRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	positionService := service.NewPositionService(db, positionRepo, tradeRepo, cfg.Fund.CashTicker)
	costService := service.NewCostService(costRepo, valuationRepo, fsTradeRepo, cfg.Fund)
	navService := service.NewNavService(db, positionRepo, valuationRepo, costRepo, fsTradeRepo, costService)
	fundShareService := service.NewFundShareService(db, investorRepo, positionRepo, fsTradeRepo, requestRepo, valuationRepo, cfg.Fund)
	investorService := service.NewInvestorService(investorRepo, positionRepo, valuationRepo, cfg.Fund)
	snapshotService := service.NewSnapshotService(db, positionRepo, snapshotRepo)
	priceService := service.NewPriceService(db, positionRepo, priceRepo, marketdata.NewFinanceClient(cfg.Fund.TickerSuffix))

	// Create router
	router, err := api.NewRouter(api.Services{
		System:    systemService,
		Position:  positionService,
		Nav:       navService,
		Cost:      costService,
		FundShare: fundShareService,
		Investor:  investorService,
		Snapshot:  snapshotService,
		Price:     priceService,
	}, cfg)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// Start the daily valuation job
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(priceService, positionService, navService, snapshotService)
		if err := jobs.Start(cfg.Scheduler.ValuationCron); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if jobs != nil {
		jobs.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
