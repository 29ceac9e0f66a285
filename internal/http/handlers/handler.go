package handlers

import (
	"knowo_wallet/internal/billing"
	"knowo_wallet/internal/ocr"
	"knowo_wallet/internal/repository"
	"knowo_wallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// HandlerConfig holds configuration for handler
type HandlerConfig struct {
	MinWithdrawal int64
}

type Handler struct {
	DB               *pgxpool.Pool
	TopupService     *service.TopupService
	WithdrawService  *service.WithdrawalService
	Engine           *billing.Engine
	Extractor        ocr.Extractor
	UserRepo         *repository.UserRepository
	TopupRepo        *repository.TopupRepository
	WithdrawalRepo   *repository.WithdrawalRepository
	NotificationRepo *repository.NotificationRepository
	AuditRepo        *repository.AuditRepository
}

func NewHandler(db *pgxpool.Pool, extractor ocr.Extractor, cfg HandlerConfig) *Handler {
	return &Handler{
		DB:               db,
		TopupService:     service.NewTopupService(db, extractor),
		WithdrawService:  service.NewWithdrawalService(db, decimal.NewFromInt(cfg.MinWithdrawal)),
		Engine:           billing.NewEngine(db),
		Extractor:        extractor,
		UserRepo:         repository.NewUserRepository(db),
		TopupRepo:        repository.NewTopupRepository(db),
		WithdrawalRepo:   repository.NewWithdrawalRepository(db),
		NotificationRepo: repository.NewNotificationRepository(db),
		AuditRepo:        repository.NewAuditRepository(db),
	}
}

// getAdminSubject reads the admin identity set by the JWT middleware
func getAdminSubject(c *gin.Context) (string, bool) {
	v, ok := c.Get("admin_subject")
	if !ok {
		return "", false
	}
	subject, ok := v.(string)
	return subject, ok
}
