package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"

	"github.com/calebwren/inkwell/internal/auth"
	"github.com/calebwren/inkwell/internal/config"
	"github.com/calebwren/inkwell/internal/events"
	"github.com/calebwren/inkwell/internal/handlers"
	"github.com/calebwren/inkwell/internal/images"
	"github.com/calebwren/inkwell/internal/middleware"
	"github.com/calebwren/inkwell/internal/posts"
	"github.com/calebwren/inkwell/internal/profiles"
	"github.com/calebwren/inkwell/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := posts.EnsureSchema(ctx, db); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
	if err := profiles.EnsureSchema(ctx, db); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("load aws config failed", "error", err)
		os.Exit(1)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	store := storage.NewS3Storage(s3Client, cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicURL)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("connect rabbitmq failed", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	postSvc := posts.NewService(posts.NewPostgresRepository(db), publisher, logger)
	imageSvc := images.NewService(postSvc, store)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	postsHandler := handlers.NewPostsHandler(postSvc, profiles.NewPostgresRepository(db), logger)
	imagesHandler := handlers.NewImagesHandler(imageSvc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health(&handlers.HealthDeps{
		DB:          db,
		Storage:     store,
		RabbitMQURL: cfg.RabbitMQURL,
	}))
	mux.Handle("GET /posts", postsHandler.ListPublished())
	mux.Handle("GET /posts/{slug}", postsHandler.GetBySlug())
	mux.Handle("POST /posts", middleware.RequireSession(postsHandler.Create()))
	mux.Handle("PUT /posts/{id}", middleware.RequireSession(postsHandler.Save()))
	mux.Handle("POST /posts/{id}/image", middleware.RequireSession(imagesHandler.Attach()))
	mux.Handle("DELETE /posts/{id}/image", middleware.RequireSession(imagesHandler.Detach()))
	mux.Handle("GET /dashboard/posts", middleware.RequireSession(postsHandler.Dashboard()))

	handler := middleware.RequestID(
		middleware.Session(verifier)(
			middleware.Logging(logger)(mux)))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
