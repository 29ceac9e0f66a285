package http

import (
	"os"
	"strconv"
	"time"

	"knowo_wallet/internal/http/handlers"
	"knowo_wallet/internal/http/middleware"
	"knowo_wallet/internal/ocr"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, extractor ocr.Extractor, version string, cfg handlers.HandlerConfig) {
	h := handlers.NewHandler(db, extractor, cfg)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 30
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	// tighter limit for the OCR-heavy endpoints
	uploadRateLimit := 5
	if v := os.Getenv("UPLOAD_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			uploadRateLimit = n
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	uploadRL := middleware.RedisRateLimit(uploadRateLimit, apiRateWindow)

	// Top-ups
	api.POST("/wallet", uploadRL, h.SubmitTopup)
	api.GET("/wallet/all", h.ListAllTopups)
	api.GET("/wallet/user/:userId", h.ListUserTopups)
	api.GET("/wallet/screenshot/:id", h.GetTopupScreenshot)
	api.GET("/user/:id/balance", h.GetBalance)

	// Pre-flight duplicate lookups
	api.GET("/check-utr/:utr", h.CheckUTR)
	api.POST("/check-image-duplicate/:userId", h.CheckImageDuplicate)

	// Verification diagnostics
	api.POST("/verify-upi", uploadRL, h.VerifyUPI)
	api.POST("/test-image-extraction", uploadRL, h.TestImageExtraction)

	// Withdrawals
	api.POST("/withdrawals", h.CreateWithdrawal)
	api.GET("/withdrawals/all", h.ListAllWithdrawals)
	api.GET("/withdrawals/check-pending/:userId", h.CheckPendingWithdrawal)
	api.GET("/wallet-withdrawals/:userId", h.ListUserWithdrawals)

	// Notifications
	api.GET("/notifications/:userId", h.ListNotifications)

	// Admin console: approvals and the cron job triggers
	admin := api.Group("")
	admin.Use(middleware.AdminJWT())
	{
		admin.PUT("/wallet/due/:id", h.SetTopupDue)
		admin.PUT("/withdrawals/:id", h.UpdateWithdrawalStatus)

		admin.POST("/admin/manual-cleanup", h.ManualCleanup)
		admin.POST("/admin/manual-daily-check", h.ManualDailyCheck)
		admin.POST("/admin/manual-monthly-deduction", h.ManualMonthlyDeduction)
		admin.POST("/admin/run-all", h.RunAllCronJobs)
		admin.GET("/admin/last-executed", h.LastExecuted)
		admin.GET("/admin/actions", h.RecentActions)
	}
}
