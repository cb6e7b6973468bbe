package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"weather-dashboard/internal/config"
	apphttp "weather-dashboard/internal/http"
	"weather-dashboard/internal/repository/sqlite"
	"weather-dashboard/internal/service"
	"weather-dashboard/internal/session"
	"weather-dashboard/internal/weather"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	cityRepo := sqlite.NewCityRepository(db)

	accounts, err := service.DemoAccounts()
	if err != nil {
		logger.Fatalf("prepare demo accounts: %v", err)
	}
	seeded, err := sqlite.NewSeeder(db).SeedIfEmpty(ctx, accounts)
	if err != nil {
		logger.Fatalf("seed database: %v", err)
	}
	if seeded {
		logger.Info("seeded demo accounts: demo / user123, admin / admin123")
	}

	weatherClient := weather.New(weather.Config{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.BaseURL,
		Timeout: cfg.Weather.Timeout,
	}, logger)

	sessions, err := session.NewManager(session.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		logger.Fatalf("session manager: %v", err)
	}

	userService := service.NewUserService(userRepo)
	cityService := service.NewCityService(cityRepo, userRepo, weatherClient, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, cityService, weatherClient, sessions, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
