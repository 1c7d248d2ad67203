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

	"github.com/joho/godotenv"

	"github.com/bookkita-api/internal/config"
	"github.com/bookkita-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/bookkita-api/internal/infrastructure/jwt"
	redisinfra "github.com/bookkita-api/internal/infrastructure/redis"
	s3infra "github.com/bookkita-api/internal/infrastructure/s3"
	"github.com/bookkita-api/internal/infrastructure/smtp"
	"github.com/bookkita-api/internal/pkg/ratelimit"
	transporthttp "github.com/bookkita-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Println("WARN: JWT_SECRET not set, signing tokens with the built-in default")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider := jwtinfra.NewProvider(cfg.JWTSecret, cfg.TokenExpiry())

	// Ebook asset store.
	s3Client := s3infra.NewClient(cfg)
	assetStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	// OTP issuance limiter: Redis when configured, per-process otherwise.
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb, err := redisinfra.NewClient(context.Background(), cfg)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		limiter = ratelimit.NewRedis(rdb, ratelimit.DefaultMax, ratelimit.DefaultWindow)
	} else {
		limiter = ratelimit.NewMemory(ratelimit.DefaultMax, ratelimit.DefaultWindow)
	}

	deps := &transporthttp.Deps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		OtpRepo:     dynamo.NewOtpRepo(dynamoClient, cfg.DynamoTables.OtpCodes),
		SessionRepo: dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		BookRepo:    dynamo.NewBookRepo(dynamoClient, cfg.DynamoTables.Books),
		AssetStore:  assetStore,
		Mailer:      mailer,
		Limiter:     limiter,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
