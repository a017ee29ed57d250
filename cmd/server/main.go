// cmd/server/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"fitclub/internal/api"
	"fitclub/internal/authz"
	"fitclub/internal/config"
	"fitclub/internal/directory"
	"fitclub/internal/event"
	"fitclub/internal/notification"
	"fitclub/internal/telemetry"
	"fitclub/internal/treat"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer shutdownTelemetry(ctx)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	directoryHandler := directory.NewHandler(directory.NewService(db, cfg.JWTSecret), logger)
	eventHandler := event.NewHandler(event.NewService(db), logger)
	treatHandler := treat.NewHandler(treat.NewService(db), logger)
	notificationHandler := notification.NewHandler(notification.NewService(db), logger)

	authenticate := api.Authenticator(cfg.JWTSecret, logger)
	requireAdmin := api.RequireRole(logger, authz.AdminOnly...)
	requireSuperAdmin := api.RequireRole(logger, authz.SuperAdminOnly...)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Post("/auth/register", directoryHandler.HandleRegister)
		r.Post("/auth/login", directoryHandler.HandleLogin)
		r.Get("/events", eventHandler.HandleList)
		r.Get("/events/{id}", eventHandler.HandleGet)
		r.Post("/events/{id}/register-guest", eventHandler.HandleRegisterGuest)

		// Authenticated member surface.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/events/{id}/register", eventHandler.HandleRegisterMember)
			r.Get("/notifications", notificationHandler.HandleListMine)
			r.Post("/treats", treatHandler.HandlePropose)
			r.Get("/treats", treatHandler.HandleListMine)
			r.Delete("/treats/{id}", treatHandler.HandleDelete)
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, requireAdmin)
			r.Get("/members", directoryHandler.HandleListMembers)
			r.Patch("/members/{id}/promote", directoryHandler.HandlePromote)
			r.Patch("/members/{id}/demote", directoryHandler.HandleDemote)
			r.With(requireSuperAdmin).Post("/members/create-admin", directoryHandler.HandleCreateAdmin)

			r.Post("/events", eventHandler.HandleCreate)
			r.Patch("/events/{id}", eventHandler.HandleUpdate)
			r.Patch("/events/{id}/cancel", eventHandler.HandleCancel)
			r.Delete("/events/{id}", eventHandler.HandleDelete)

			r.Get("/treats", treatHandler.HandleListAll)
			r.Patch("/treats/{id}/approve", treatHandler.HandleApprove)
			r.Patch("/treats/{id}/status", treatHandler.HandleChangeStatus)

			r.Post("/notifications", notificationHandler.HandleCreate)
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
