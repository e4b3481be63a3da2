package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"furious-host/internal/config"
	"furious-host/internal/db"
	"furious-host/internal/email"
	apihttp "furious-host/internal/http"
	"furious-host/internal/llm"
	"furious-host/internal/repository"
	"furious-host/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	ticketRepo := repository.NewPgTicketRepository(pool)
	roleRepo := repository.NewPgRoleRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.AIGatewayURL, cfg.AIGatewayKey, cfg.AIModel, logger)
	if cfg.AIGatewayKey == "" {
		logger.Warn("ai gateway key not configured")
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter service.OTPRateLimiter
		tokenStore service.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, profileRepo, emailSender, otpLimiter)
	planSvc := service.NewPlanService(logger, llmClient)
	chatSvc := service.NewChatService(logger, messageRepo, llmClient)
	ticketSvc := service.NewTicketService(logger, ticketRepo, roleRepo)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc, roleRepo)
	planHandler := apihttp.NewPlanHandler(logger, planSvc)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	ticketHandler := apihttp.NewTicketHandler(logger, ticketSvc)
	adminHandler := apihttp.NewAdminHandler(logger, ticketSvc, profileRepo, roleRepo)

	router := apihttp.NewRouter(logger, userHandler, planHandler, chatHandler, ticketHandler, adminHandler, jwtSvc, roleRepo)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
