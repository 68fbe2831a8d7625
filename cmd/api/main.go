package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luischz/inventario_ventas/internal/config"
	httpDelivery "github.com/luischz/inventario_ventas/internal/delivery/http"
	"github.com/luischz/inventario_ventas/internal/delivery/events"
	"github.com/luischz/inventario_ventas/internal/delivery/http/handler"
	"github.com/luischz/inventario_ventas/internal/pkg/cache"
	"github.com/luischz/inventario_ventas/internal/pkg/database"
	"github.com/luischz/inventario_ventas/internal/pkg/imagestore"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
	cacheRepo "github.com/luischz/inventario_ventas/internal/repository/cache"
	"github.com/luischz/inventario_ventas/internal/repository/postgres"
	"github.com/luischz/inventario_ventas/internal/usecase/product"
	"github.com/luischz/inventario_ventas/internal/usecase/report"
	"github.com/luischz/inventario_ventas/internal/usecase/sale"

	_ "github.com/luischz/inventario_ventas/docs"
)

// @title Inventario y Ventas API
// @version 1.0
// @description Inventory and sales tracking system with atomic sale processing, range reports, audit history and event notifications.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/luischz/inventario_ventas
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @tag.name Productos
// @tag.description Product management endpoints

// @tag.name Ventas
// @tag.description Sale registration and reversal endpoints

// @tag.name Reportes
// @tag.description Sales report endpoints

// @tag.name Historial
// @tag.description Audit trail endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Inventario y Ventas API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	productRepo := postgres.NewProductRepository(db)
	saleRepo := postgres.NewSaleRepository(db, cfg.Database.LockTimeout)
	historyRepo := postgres.NewHistoryRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	reportCache := cacheRepo.NewReportCache(redisClient, cfg.Cache.ReportTTL)
	imageStore := imagestore.NewCloudinary(cfg)

	productService := product.NewService(productRepo, historyRepo, imageStore, publisher, appLogger)
	saleService := sale.NewService(saleRepo, historyRepo, reportCache, publisher, appLogger)
	reportService := report.NewService(reportRepo, saleRepo, reportCache, appLogger)

	productHandler := handler.NewProductHandler(productService, appLogger)
	saleHandler := handler.NewSaleHandler(saleService, appLogger)
	reportHandler := handler.NewReportHandler(reportService, appLogger)

	router := httpDelivery.NewRouter(productHandler, saleHandler, reportHandler, cfg.Server.AllowedOrigins, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
