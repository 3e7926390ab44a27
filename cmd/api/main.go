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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/salonlink/backend/config"
	"github.com/salonlink/backend/pkg/api/handlers"
	custommw "github.com/salonlink/backend/pkg/api/middleware"
	"github.com/salonlink/backend/pkg/audit"
	"github.com/salonlink/backend/pkg/auth"
	"github.com/salonlink/backend/pkg/cache"
	"github.com/salonlink/backend/pkg/callers"
	"github.com/salonlink/backend/pkg/calltracking"
	"github.com/salonlink/backend/pkg/commissionrules"
	"github.com/salonlink/backend/pkg/customers"
	"github.com/salonlink/backend/pkg/database"
	"github.com/salonlink/backend/pkg/fieldforce"
	"github.com/salonlink/backend/pkg/jobs"
	"github.com/salonlink/backend/pkg/leads"
	"github.com/salonlink/backend/pkg/logger"
	"github.com/salonlink/backend/pkg/metrics"
	custommiddleware "github.com/salonlink/backend/pkg/middleware"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/products"
	"github.com/salonlink/backend/pkg/referrals"
	"github.com/salonlink/backend/pkg/salons"
	"github.com/salonlink/backend/pkg/stylists"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLog := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("✅ Database ready")

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2) // 5 req/min for login

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLog.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "SalonLink Admin API",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		if _, err := redisClient.Redis.Ping(ctx).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize JWT blacklist
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Initialize telephony provider
	var callProvider calltracking.CallProvider
	if cfg.TelephonyBaseURL != "" {
		callProvider = calltracking.NewHTTPProvider(cfg.TelephonyBaseURL, cfg.TelephonyAPIKey)
		log.Printf("✅ Click-to-call enabled (%s)", cfg.TelephonyBaseURL)
	} else {
		log.Printf("ℹ️  Click-to-call disabled (no telephony base URL configured)")
	}

	// Initialize services
	auditService := audit.New(db.DB)
	customerService := customers.NewService(db.DB)
	cacheTTL := time.Duration(cfg.LeadListCacheTTLSeconds) * time.Second
	leadService := leads.NewService(db.DB, redisClient, auditService, customerService, appLog, cacheTTL, cfg.DefaultPhoneRegion)
	callService := calltracking.NewService(db.DB, callProvider, cfg.TelephonyCallerID, appLog)
	salonService := salons.NewService(db.DB)
	stylistService := stylists.NewService(db.DB)
	callerService := callers.NewService(db.DB)
	agentService := fieldforce.NewService(db.DB, salonService)
	ruleService := commissionrules.NewService(db.DB)
	referralService := referrals.NewService(db.DB, ruleService, stylistService)
	productService := products.NewService(db.DB)

	// Reminder gauge refresh
	reminderMonitor := jobs.NewReminderMonitor(db.DB, prometheusMetrics, appLog)
	if err := reminderMonitor.Start(); err != nil {
		log.Fatalf("❌ Failed to start reminder monitor: %v", err)
	}
	log.Printf("✅ Reminder monitor started")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db.DB, cfg, tokenBlacklist, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leadService, callService, prometheusMetrics)
	salonHandler := handlers.NewSalonHandler(salonService)
	stylistHandler := handlers.NewStylistHandler(stylistService)
	callerHandler := handlers.NewCallerHandler(callerService)
	agentHandler := handlers.NewFieldAgentHandler(agentService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	referralHandler := handlers.NewReferralHandler(referralService, prometheusMetrics)
	ruleHandler := handlers.NewCommissionRuleHandler(ruleService)
	productHandler := handlers.NewProductHandler(productService)

	jwtAuth := custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist)

	v1 := e.Group("/api/v1")

	// Authentication routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
		authRoutes.POST("/logout", authHandler.Logout, jwtAuth)
		authRoutes.GET("/me", authHandler.Me, jwtAuth)
	}

	// Protected routes (require JWT with blacklist validation)
	protected := v1.Group("")
	protected.Use(jwtAuth)
	{
		// Lead routes: callers work the console, admins see everything
		leadsGroup := protected.Group("/leads")
		leadsGroup.Use(custommiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleLeadCaller))
		{
			leadsGroup.GET("", leadHandler.List)
			leadsGroup.POST("", leadHandler.Create)
			leadsGroup.DELETE("", leadHandler.DeleteAll, custommiddleware.RequireSuperAdmin())
			leadsGroup.GET("/:id", leadHandler.Get)
			leadsGroup.PATCH("/:id", leadHandler.Update)
			leadsGroup.DELETE("/:id", leadHandler.Delete, custommiddleware.RequireAdmin())
			leadsGroup.PATCH("/:id/assign", leadHandler.Assign, custommiddleware.RequireAdmin())
			leadsGroup.GET("/:id/history", leadHandler.History)
			leadsGroup.GET("/:id/calls", leadHandler.CallLogs)
		}

		// Click-to-call
		protected.POST("/calls", leadHandler.ClickToCall,
			custommiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleLeadCaller))

		// Customer lookup (read-only; edits go through the lead endpoints)
		customersGroup := protected.Group("/customers",
			custommiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleLeadCaller))
		{
			customersGroup.GET("", customerHandler.Search)
			customersGroup.GET("/:id", customerHandler.Get)
		}

		// Salon onboarding: field agents run the pipeline on the ground
		salonsGroup := protected.Group("/salons")
		salonsGroup.Use(custommiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleFieldAgent))
		{
			salonsGroup.GET("", salonHandler.List)
			salonsGroup.POST("", salonHandler.Create, custommiddleware.RequireAdmin())
			salonsGroup.GET("/:id", salonHandler.Get)
			salonsGroup.PATCH("/:id", salonHandler.Update)
			salonsGroup.DELETE("/:id", salonHandler.Delete, custommiddleware.RequireAdmin())
			salonsGroup.PATCH("/:id/checklist", salonHandler.SetChecklist)
			salonsGroup.POST("/:id/advance-stage", salonHandler.AdvanceStage)
		}

		// Stylists
		stylistsGroup := protected.Group("/stylists")
		stylistsGroup.Use(custommiddleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleFieldAgent))
		{
			stylistsGroup.GET("", stylistHandler.List)
			stylistsGroup.POST("", stylistHandler.Create)
			stylistsGroup.GET("/:id", stylistHandler.Get)
			stylistsGroup.PATCH("/:id", stylistHandler.Update)
			stylistsGroup.DELETE("/:id", stylistHandler.Delete, custommiddleware.RequireAdmin())
		}

		// Staff account management (admin only)
		callersGroup := protected.Group("/callers", custommiddleware.RequireAdmin())
		{
			callersGroup.GET("", callerHandler.List)
			callersGroup.POST("", callerHandler.Create)
			callersGroup.PATCH("/:id/status", callerHandler.SetStatus)
			callersGroup.POST("/:id/reset-password", callerHandler.ResetPassword)
			callersGroup.DELETE("/:id", callerHandler.Delete)
		}

		agentsGroup := protected.Group("/field-agents", custommiddleware.RequireAdmin())
		{
			agentsGroup.GET("", agentHandler.List)
			agentsGroup.POST("", agentHandler.Create)
			agentsGroup.PATCH("/:id/status", agentHandler.SetStatus)
			agentsGroup.GET("/:id/salons", agentHandler.Salons)
			agentsGroup.POST("/:id/salons", agentHandler.AssignSalon)
			agentsGroup.DELETE("/:id/salons/:salonId", agentHandler.UnassignSalon)
		}

		// Referral program (admin only)
		referralsGroup := protected.Group("/referrals", custommiddleware.RequireAdmin())
		{
			referralsGroup.GET("", referralHandler.List)
			referralsGroup.POST("", referralHandler.Create)
			referralsGroup.GET("/:id", referralHandler.Get)
			referralsGroup.POST("/:id/credit", referralHandler.Credit)
			referralsGroup.POST("/bulk-credit", referralHandler.BulkCredit)
		}

		discountGroup := protected.Group("/discount-codes", custommiddleware.RequireAdmin())
		{
			discountGroup.GET("", referralHandler.ListDiscountCodes)
			discountGroup.POST("", referralHandler.CreateDiscountCode)
			discountGroup.PATCH("/:id/status", referralHandler.SetDiscountCodeStatus)
		}

		rulesGroup := protected.Group("/commission-rules", custommiddleware.RequireAdmin())
		{
			rulesGroup.GET("", ruleHandler.List)
			rulesGroup.POST("", ruleHandler.Create)
			rulesGroup.GET("/:id", ruleHandler.Get)
			rulesGroup.PATCH("/:id", ruleHandler.Update)
			rulesGroup.DELETE("/:id", ruleHandler.Delete)
		}

		// Product catalog: read for everyone signed in, writes for admins
		productsGroup := protected.Group("/products")
		{
			productsGroup.GET("", productHandler.List)
			productsGroup.GET("/:id", productHandler.Get)
			productsGroup.POST("", productHandler.Create, custommiddleware.RequireAdmin())
			productsGroup.DELETE("/:id", productHandler.Delete, custommiddleware.RequireAdmin())
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 SalonLink Admin API starting on %s", address)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	reminderMonitor.Stop()
	log.Println("✅ Reminder monitor stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
