package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"knowo_wallet/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// server-side statement_timeout applied to every pooled connection
	DBStatementTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string

	// cron expression for the nightly maintenance run
	CronSchedule string

	MinWithdrawal int64

	TesseractBin   string
	OCRTimeout     time.Duration
	OCRConcurrency int

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, falling back to .env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	var corsOrigins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				corsOrigins = append(corsOrigins, origin)
			}
		}
	}

	cronSchedule := os.Getenv("CRON_SCHEDULE")
	if cronSchedule == "" {
		cronSchedule = "0 0 * * *" // midnight daily
	}

	dbStatementTimeout := 5 * time.Second
	if v := os.Getenv("DB_STATEMENT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dbStatementTimeout = time.Duration(n) * time.Second
		}
	}

	minWithdrawal := int64(50)
	if v := os.Getenv("MIN_WITHDRAWAL"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			minWithdrawal = n
		}
	}

	tesseractBin := os.Getenv("TESSERACT_BIN")
	if tesseractBin == "" {
		tesseractBin = "tesseract"
	}

	ocrTimeout := 15 * time.Second
	if v := os.Getenv("OCR_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ocrTimeout = time.Duration(n) * time.Second
		}
	}

	ocrConcurrency := 4
	if v := os.Getenv("OCR_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ocrConcurrency = n
		}
	}

	return &Config{
		AppPort:            port,
		DatabaseURL:        dbURL,
		JWTSecret:          jwtSecret,
		DBStatementTimeout: dbStatementTimeout,
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            redisDB,
		CORSOrigins:        corsOrigins,
		CronSchedule:       cronSchedule,
		MinWithdrawal:      minWithdrawal,
		TesseractBin:       tesseractBin,
		OCRTimeout:         ocrTimeout,
		OCRConcurrency:     ocrConcurrency,
		LogLevel:           os.Getenv("LOG_LEVEL"),
		LogJSON:            os.Getenv("LOG_JSON") == "true",
	}
}
