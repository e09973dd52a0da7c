package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Limense/cochera-management-system-sub000/internal/config"
	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/handler"
	"github.com/Limense/cochera-management-system-sub000/internal/ports"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/Limense/cochera-management-system-sub000/internal/server"
	"github.com/Limense/cochera-management-system-sub000/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := repository.EnsureSchema(ctx, pg); err != nil {
		logger.Error("failed to ensure schema", "err", err)
		os.Exit(1)
	}

	// repositories
	spaceRepo := repository.SpaceRepository{DB: pg}
	sessionRepo := repository.SessionRepository{DB: pg}
	tariffRepo := repository.TariffRepository{DB: pg}
	pricingRepo := repository.PricingRepository{DB: pg, DefaultCurrency: cfg.DefaultCurrency}
	shiftRepo := repository.ShiftRepository{DB: pg}
	auditRepo := repository.AuditRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	if err := spaceRepo.SeedInventory(ctx, cfg.GarageCapacity, cfg.MotorcycleShare); err != nil {
		logger.Error("failed to seed space inventory", "err", err)
		os.Exit(1)
	}
	if err := tariffRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed tariffs", "err", err)
		os.Exit(1)
	}

	clock := ports.SystemClock{}

	// services
	auditSvc := service.NewAuditService(auditRepo, logger, cfg.AuditQueueSize, cfg.AuditMaxRetries)
	defer auditSvc.Close()

	pricingSvc := service.PricingService{Tariffs: tariffRepo, Config: pricingRepo, Clock: clock}
	sessionSvc := &service.SessionService{
		Sessions:         sessionRepo,
		Spaces:           spaceRepo,
		Pricing:          pricingSvc,
		Audit:            auditSvc,
		Clock:            clock,
		Logger:           logger,
		ReleaseRetryWait: cfg.ReleaseRetryWait,
	}
	shiftSvc := &service.ShiftService{Shifts: shiftRepo, Audit: auditSvc, Clock: clock, Logger: logger}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	spaceHandler := handler.SpaceHandler{Repo: spaceRepo}
	sessionHandler := handler.SessionHandler{Service: sessionSvc, Repo: sessionRepo}
	pricingHandler := handler.PricingHandler{Service: pricingSvc, Repo: pricingRepo}
	tariffHandler := handler.TariffHandler{Repo: tariffRepo}
	shiftHandler := handler.ShiftHandler{Service: shiftSvc, Repo: shiftRepo}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo}
	auditHandler := handler.AuditLogHandler{Repo: auditRepo}

	router := server.NewRouter(cfg, logger,
		healthHandler, spaceHandler, sessionHandler, pricingHandler,
		tariffHandler, shiftHandler, dashboardHandler, auditHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
