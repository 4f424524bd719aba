package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/config"
	handlers "storefront/internal/handlers/shared"
	"storefront/internal/repositories/mongodb"
	"storefront/internal/services"
	"storefront/pkg/cache"
	"storefront/pkg/database"
	"storefront/pkg/email"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/oauth"
	"storefront/pkg/sms"
	"storefront/pkg/storage"
	"storefront/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Infrastructure
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongoDB.Database, nil).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		KeyPrefix:    cfg.Redis.KeyPrefix,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	fileStorage, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise file storage")
	}

	var emailService services.EmailService
	if cfg.SMTP.Host != "" {
		emailService = email.NewSMTPSender(&email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.FromEmail,
			FromName:  cfg.SMTP.FromName,
		})
	} else {
		appLogger.Warn("SMTP is not configured; verification and reset emails are disabled")
	}

	var googleProvider oauth.OAuthProvider
	if g := cfg.OAuth.Google; g != nil && g.ClientID != "" {
		googleProvider = oauth.NewGoogleOAuthProvider(g.ClientID, g.ClientSecret, g.RedirectURL, g.Scopes)
	}

	var notifier services.Notifier
	smsProvider, err := newSMSProvider(ctx, cfg.SMS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise SMS provider")
	}
	if smsProvider != nil {
		notifier = services.NewSMSNotifier(smsProvider, cfg.App.Currency)
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(mongoDB.Database, redisCache)
	couponCodeRepo := mongodb.NewCouponCodeRepository(mongoDB.Database, redisCache, cfg.Coupon.CodeCacheTTL)
	couponRepo := mongodb.NewCouponRepository(mongoDB.Database)
	productRepo := mongodb.NewProductRepository(mongoDB.Database)

	// Services
	authService := services.NewAuthService(userRepo, redisCache, googleProvider, emailService, services.AuthConfig{
		JWTSecret:        cfg.Security.JWTSecret,
		AccessTokenTTL:   cfg.Security.JWTAccessTokenTTL,
		SocialTokenTTL:   cfg.Security.JWTSocialTokenTTL,
		VerifyTokenTTL:   cfg.Security.VerifyTokenTTL,
		ResetTokenTTL:    cfg.Security.ResetTokenTTL,
		MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
		LoginLockoutTime: cfg.Security.LoginLockoutTime,
		BaseURL:          cfg.App.BaseURL,
	}, appLogger)
	accountService := services.NewAccountService(userRepo, appLogger)
	couponService := services.NewCouponService(
		userRepo,
		couponCodeRepo,
		couponRepo,
		services.NewIdempotencyStore(redisCache, cfg.Coupon.IdempotencyTTL),
		services.CouponServiceConfig{ActivationValue: cfg.Coupon.ActivationValue, Notifier: notifier},
		appLogger,
	)
	productService := services.NewProductService(productRepo, fileStorage, cfg.Storage.MaxWidth, appLogger)

	metrics.MustRegister()

	routerConfig := routes.RouterConfig{
		JWTSecret:      cfg.Security.JWTSecret,
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
		TrustedProxies: cfg.Security.TrustedProxies,
	}
	if cfg.Storage.Provider == "local" || cfg.Storage.Provider == "" {
		routerConfig.UploadsDir = cfg.Storage.Local.BasePath
		routerConfig.UploadsURL = cfg.Storage.Local.BaseURL
	}

	router := routes.NewRouter(&routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Account: handlers.NewAccountHandler(accountService),
		Coupon:  handlers.NewCouponHandler(couponService),
		Product: handlers.NewProductHandler(productService),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"mongodb": mongoDB,
			"redis":   redisCache,
		}),
	}, routerConfig, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}

func newStorageProvider(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "aws":
		return storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcp":
		return storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	case "local", "":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func newSMSProvider(ctx context.Context, cfg *config.SMSConfig) (sms.Provider, error) {
	switch cfg.Provider {
	case "twilio":
		return sms.NewTwilioProvider(cfg.AccountSID, cfg.AuthToken, cfg.FromNumber), nil
	case "aws":
		return sms.NewAWSSNSProvider(ctx, cfg.AWSRegion)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}
