package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quillhq/quill/internal/cache"
	"github.com/quillhq/quill/internal/config"
	"github.com/quillhq/quill/internal/database"
	"github.com/quillhq/quill/internal/notify"
	postgresrepo "github.com/quillhq/quill/internal/repository/postgres"
	"github.com/quillhq/quill/internal/service"
	"github.com/quillhq/quill/internal/transport/http/handlers"
	"github.com/quillhq/quill/internal/transport/http/middleware"
	"github.com/quillhq/quill/internal/transport/ws"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		logger.Fatal("migrating database", zap.Error(err))
	}
	logger.Info("connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	profileRepo := postgresrepo.NewProfileRepo(pool)
	postRepo := postgresrepo.NewPostRepo(pool)

	// Stats cache (optional, degrades to direct queries when absent)
	statsCache := cache.New(cfg.MemcachedAddr)

	// Notification fan-out
	mailer := notify.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom)
	dispatcher := notify.NewDispatcher(mailer, cfg.PublicURL, cfg.NotifyWorkers, cfg.NotifyQueueSize, logger)
	go func() {
		if err := dispatcher.Run(context.Background()); err != nil {
			logger.Error("notification dispatcher stopped", zap.Error(err))
		}
	}()
	defer dispatcher.Close()

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	profileService := service.NewProfileService(profileRepo, postRepo)
	profileService.SetStatsCache(statsCache)
	postService := service.NewPostService(postRepo, profileRepo)
	postService.SetStatsCache(statsCache)
	postService.SetDispatcher(dispatcher)
	postService.SetNotifier(ws.NewHubNotifier(hub))
	feedService := service.NewFeedService(postRepo, profileRepo, cfg.FeedPageSize)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService, postService, cfg.FeedPageSize)
	postHandler := handlers.NewPostHandler(postService)
	feedHandler := handlers.NewFeedHandler(feedService)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Public
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.Handle("GET /{$}", optionalAuth(http.HandlerFunc(feedHandler.Root)))
	mux.Handle("GET /all", optionalAuth(http.HandlerFunc(feedHandler.All)))
	mux.Handle("GET /user/{id}", optionalAuth(http.HandlerFunc(profileHandler.Get)))
	mux.HandleFunc("GET /post/{id}", postHandler.Get)

	// Protected
	mux.Handle("DELETE /auth/account", auth(http.HandlerFunc(authHandler.DeleteAccount)))
	mux.Handle("GET /feed", auth(http.HandlerFunc(feedHandler.Feed)))
	mux.Handle("GET /following", auth(http.HandlerFunc(profileHandler.ListFollowing)))
	mux.Handle("GET /read", auth(http.HandlerFunc(profileHandler.ListRead)))
	mux.Handle("POST /profile", auth(http.HandlerFunc(profileHandler.Edit)))
	mux.Handle("POST /post/new", auth(http.HandlerFunc(postHandler.Create)))
	mux.Handle("POST /post/{id}/edit", auth(http.HandlerFunc(postHandler.Update)))
	mux.Handle("POST /post/{id}/del", auth(http.HandlerFunc(postHandler.Delete)))

	// WebSocket feed stream
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info("starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
