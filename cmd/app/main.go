package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"knowo_wallet/internal/billing"
	"knowo_wallet/internal/config"
	"knowo_wallet/internal/db"
	httpServer "knowo_wallet/internal/http"
	"knowo_wallet/internal/http/handlers"
	"knowo_wallet/internal/http/middleware"
	"knowo_wallet/internal/logger"
	"knowo_wallet/internal/ocr"
	"knowo_wallet/internal/scheduler"
	"knowo_wallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL, cfg.DBStatementTimeout)
	defer dbPool.Close()

	r := gin.Default()

	// CORS with a configured allow-list; without one, reflect the origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originAllowed(origin, cfg.CORSOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	extractor := ocr.NewTesseract(cfg.TesseractBin, cfg.OCRTimeout, cfg.OCRConcurrency)
	httpServer.RegisterRoutes(r, dbPool, extractor, version, handlers.HandlerConfig{
		MinWithdrawal: cfg.MinWithdrawal,
	})

	sched := scheduler.New(billing.NewEngine(dbPool), logger.Get(), cfg.CronSchedule)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", "error", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == origin {
			return true
		}
	}
	return false
}
