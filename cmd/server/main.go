package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "github.com/fub-assistant/backend/internal/application/auth"
	billingapp "github.com/fub-assistant/backend/internal/application/billing"
	chatapp "github.com/fub-assistant/backend/internal/application/chat"
	crmapp "github.com/fub-assistant/backend/internal/application/crm"
	"github.com/fub-assistant/backend/internal/infrastructure/ai"
	"github.com/fub-assistant/backend/internal/infrastructure/auth"
	"github.com/fub-assistant/backend/internal/infrastructure/billing"
	"github.com/fub-assistant/backend/internal/infrastructure/cache"
	"github.com/fub-assistant/backend/internal/infrastructure/config"
	"github.com/fub-assistant/backend/internal/infrastructure/fub"
	"github.com/fub-assistant/backend/internal/infrastructure/logger"
	"github.com/fub-assistant/backend/internal/infrastructure/persistence"
	"github.com/fub-assistant/backend/internal/infrastructure/ratelimit"
	"github.com/fub-assistant/backend/internal/interfaces/http/handler"
	"github.com/fub-assistant/backend/internal/interfaces/http/middleware"
	"github.com/fub-assistant/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FUB Assistant backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize Redis. The widget degrades rather than dies when Redis is
	// down: rate limiting falls back to Postgres and the lead context cache
	// misses every lookup.
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, continuing with database fallbacks", zap.Error(err))
	} else {
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	chatMessageRepo := persistence.NewGormChatMessageRepository(db.DB)
	rateLimitRepo := persistence.NewGormRateLimitRepository(db.DB)

	// Rate limiter chain: Redis sliding window first, Postgres fixed
	// window when Redis errors out
	databaseLimiter := ratelimit.NewDatabaseLimiter(rateLimitRepo)
	var limiter ratelimit.Limiter = databaseLimiter
	if redisClient != nil {
		limiter = ratelimit.NewFallbackLimiter(
			ratelimit.NewRedisSlidingWindowLimiter(redisClient),
			databaseLimiter,
			log,
		)
	}

	// Lead context cache (90s TTL keeps mid-conversation follow-ups cheap)
	var leadCache chatapp.ContextCache
	if redisClient != nil {
		leadCache = cache.NewLeadCache(redisClient, cfg.OpenAI.LeadCacheTTL)
	}

	// External clients
	fubClient := fub.NewClient(fub.Config{
		BaseURL:      cfg.FUB.BaseURL,
		ClientID:     cfg.FUB.ClientID,
		ClientSecret: cfg.FUB.ClientSecret,
		SystemName:   cfg.FUB.SystemName,
		SystemKey:    cfg.FUB.SystemKey,
		Timeout:      cfg.FUB.Timeout,
	}, log)

	aiClient := ai.NewClient(ai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	})

	stripeConfig := &billing.StripeConfig{
		SecretKey:       cfg.Stripe.SecretKey,
		WebhookSecret:   cfg.Stripe.WebhookSecret,
		MonthlyPriceID:  cfg.Stripe.MonthlyPriceID,
		SuccessURL:      cfg.Stripe.SuccessURL,
		CancelURL:       cfg.Stripe.CancelURL,
		PortalReturnURL: cfg.Stripe.PortalReturnURL,
	}
	stripeAdapter, err := billing.NewStripeAdapter(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe", zap.Error(err))
	}

	// Auth primitives
	embedVerifier := auth.NewEmbedVerifier(cfg.Embed.Secret)
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	authService := authapp.NewService(authapp.ServiceConfig{
		Accounts: accountRepo,
		Verifier: embedVerifier,
		Tokens:   jwtService,
		Logger:   log,
	})

	chatService := chatapp.NewService(chatapp.ServiceConfig{
		Accounts:  accountRepo,
		Messages:  chatMessageRepo,
		Limiter:   limiter,
		CRM:       fubClient,
		Cache:     leadCache,
		Completer: aiClient,
		Limits: chatapp.Limits{
			AccountRequests: cfg.RateLimit.AccountRequests,
			IPRequests:      cfg.RateLimit.IPRequests,
			Window:          cfg.RateLimit.Window,
		},
		ActivityLimit: cfg.FUB.ActivityLimit,
		Logger:        log,
	})

	noteService := crmapp.NewNoteService(crmapp.NoteServiceConfig{
		Accounts: accountRepo,
		Writer:   fubClient,
		Logger:   log,
	})

	checkoutService := billingapp.NewCheckoutService(billingapp.CheckoutServiceConfig{
		Accounts: accountRepo,
		Gateway:  stripeAdapter,
		Logger:   log,
	})

	webhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config:   stripeConfig,
		Accounts: accountRepo,
		Logger:   log,
	})

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - CSP with the iframe ancestor allowlist
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Per-IP ceiling (if enabled)
	// 8. Session auth - Widget session tokens
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	securityConfig := middleware.DefaultSecurityConfig()
	if len(cfg.Embed.AllowedAncestors) > 0 {
		securityConfig.FrameAncestors = cfg.Embed.AllowedAncestors
	}
	engine.Use(middleware.SecureWithConfig(securityConfig))

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: limiter,
			Limit:   cfg.RateLimit.IPRequests,
			Window:  cfg.RateLimit.Window,
			Logger:  log,
		}))
		log.Info("IP rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.IPRequests),
			zap.Duration("window", cfg.RateLimit.Window),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.SessionAuthMiddlewareWithConfig(jwtConfig))

	// Routes
	systemHandler := handler.NewSystemHandler(version)
	systemHandler.SetDatabase(db)
	r := router.NewRouter(engine, router.Handlers{
		System:  systemHandler,
		Auth:    handler.NewAuthHandler(authService),
		Chat:    handler.NewChatHandler(chatService),
		Note:    handler.NewNoteHandler(noteService),
		Billing: handler.NewBillingHandler(checkoutService),
		Webhook: handler.NewStripeWebhookHandler(webhookService),
	})
	r.Setup()

	// Background prune of the Postgres limiter table. Entries are only
	// meaningful for one window, anything older is garbage.
	pruneCtx, stopPrune := context.WithCancel(context.Background())
	defer stopPrune()
	go pruneRateLimitEntries(pruneCtx, rateLimitRepo, cfg.RateLimit.Window, log)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// pruneRateLimitEntries periodically deletes expired fixed-window counters
func pruneRateLimitEntries(ctx context.Context, repo *persistence.GormRateLimitRepository, window time.Duration, log *zap.Logger) {
	if window <= 0 {
		window = time.Minute
	}
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * window)
			if err := repo.Prune(ctx, cutoff); err != nil {
				log.Warn("Failed to prune rate limit entries", zap.Error(err))
			}
		}
	}
}
