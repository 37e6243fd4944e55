package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/router"
	"github.com/iliyamo/table-reservation/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "table-reservation")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		zl.Fatal("restaurant time zone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, loc)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		zl.Warn("redis unavailable, cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	reservations := repository.NewReservationRepo(db)
	customers := repository.NewCustomerRepo(db)
	schedule := repository.NewScheduleRepo(db)
	limits := repository.NewLimitRepo(db)
	staff := repository.NewStaffRepo(db)

	plan := floorplan.NewStore(repository.NewFloorPlanRepo(db), zl)
	if _, err := plan.Reload(ctx); err != nil {
		zl.Fatal("load floor plan", zap.Error(err))
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL, zl)
		defer pub.Close()
		events = pub
	}
	if cfg.AuditConsumerEnabled {
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, cfg.AuditLogDir, zl); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	reservationSvc := service.NewReservationService(db, reservations, customers, schedule, limits, plan, service.ReservationOptions{
		Location:        loc,
		DefaultDuration: cfg.ReservationDuration,
		Events:          events,
		Logger:          zl,
	})
	availabilitySvc := service.NewAvailabilityService(schedule, reservations, plan, loc, cfg.SlotDuration, cfg.ReservationDuration)
	authSvc := service.NewAuthService(staff, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost, zl)

	if cfg.BootstrapAdmin() {
		created, err := authSvc.EnsureStaff(ctx, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin)
		if err != nil {
			zl.Fatal("bootstrap admin", zap.Error(err))
		}
		if created {
			zl.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
		}
	}

	cacheCfg := config.LoadCacheConfig()
	mws := router.Middlewares{
		Cache:      middleware.NewRedisCache(cacheCfg, rdb, zl),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb, zl),
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(zl))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, zl), mws)
	router.RegisterPublic(e,
		handler.NewReservationHandler(reservationSvc, zl),
		handler.NewAvailabilityHandler(availabilitySvc, plan, zl),
		mws)
	router.RegisterAdmin(e, handler.NewAdminHandler(reservationSvc, availabilitySvc, plan, zl), cfg.JWTSecret, mws)

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("tz", loc.String()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
