package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"knowo_wallet/internal/domain"
	"knowo_wallet/internal/logger"
	"knowo_wallet/internal/ocr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTopupNotFound = errors.New("top-up not found")
	ErrInvalidAmount = errors.New("invalid amount")
)

// DuplicateError reports a top-up that collides with an earlier submission
// on UTR or image hash, carrying the earlier submission's status so the
// client can tell "still pending" from "already credited".
type DuplicateError struct {
	Field  string
	Status domain.TopupStatus
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s (existing submission is %s)", e.Field, e.Status)
}

// TopupStore is the persistence surface for top-ups. The pgx-backed
// implementation applies the due-approval credit and its notification in a
// single transaction; Approve returns ErrTopupNotFound when the id does not
// exist.
type TopupStore interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	FindByUTR(ctx context.Context, utr string) (*domain.Topup, error)
	FindByImage(ctx context.Context, imgHash string, userID int64) (*domain.Topup, error)
	Create(ctx context.Context, t *domain.Topup) error
	Approve(ctx context.Context, id int64, due bool) error
	Screenshot(ctx context.Context, id int64) ([]byte, error)
	ListAll(ctx context.Context) ([]domain.TopupRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Topup, error)
}

// TopupService handles screenshot-backed balance top-ups.
type TopupService struct {
	store     TopupStore
	extractor ocr.Extractor
}

func NewTopupService(db *pgxpool.Pool, extractor ocr.Extractor) *TopupService {
	return &TopupService{store: NewTopupStore(db), extractor: extractor}
}

// NewTopupServiceWithStore creates a service over a custom store.
func NewTopupServiceWithStore(store TopupStore, extractor ocr.Extractor) *TopupService {
	return &TopupService{store: store, extractor: extractor}
}

// SubmitTopup records a pending top-up. The screenshot is hashed for
// duplicate detection and OCRed best-effort; an OCR failure degrades to a
// placeholder so the admin still sees the submission.
func (s *TopupService) SubmitTopup(ctx context.Context, userID int64, amount decimal.Decimal, method, utr string, screenshot []byte) (*domain.Topup, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sum := md5.Sum(screenshot)
	imgHash := hex.EncodeToString(sum[:])

	// friendly pre-checks; the UNIQUE constraints below are authoritative
	existing, err := s.store.FindByUTR(ctx, utr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateError{Field: "UTR number", Status: existing.Status}
	}
	existing, err = s.store.FindByImage(ctx, imgHash, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateError{Field: "screenshot", Status: existing.Status}
	}

	ocrText, err := s.extractor.ExtractText(ctx, screenshot)
	if err != nil {
		logger.Warn("ocr extraction failed", "user_id", userID, "error", err)
		ocrText = "OCR extraction failed"
	}

	topup := &domain.Topup{
		UserID:     userID,
		Amount:     amount,
		Method:     method,
		UTRNumber:  utr,
		Screenshot: screenshot,
		ImgHash:    imgHash,
		OCRRaw:     ocrText,
		Status:     domain.TopupStatusPending,
	}
	if err := s.store.Create(ctx, topup); err != nil {
		if dup := duplicateFromPgError(err); dup != nil {
			return nil, dup
		}
		return nil, err
	}
	return topup, nil
}

// duplicateFromPgError maps unique-violation SQLSTATEs to DuplicateError so
// two concurrent submissions of the same proof cannot both land.
func duplicateFromPgError(err error) *DuplicateError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	field := "UTR number"
	if pgErr.ConstraintName == "wallet_topups_user_img_hash_key" {
		field = "screenshot"
	}
	return &DuplicateError{Field: field, Status: domain.TopupStatusPending}
}

// SetDue flips a top-up's due flag. Marking due also completes the top-up,
// credits the user and writes a notification, all in one transaction.
func (s *TopupService) SetDue(ctx context.Context, id int64, due bool) error {
	return s.store.Approve(ctx, id, due)
}

// ListAll returns every top-up joined with the submitter, newest first.
func (s *TopupService) ListAll(ctx context.Context) ([]domain.TopupRecord, error) {
	return s.store.ListAll(ctx)
}

// ListByUser returns one user's top-up history, newest first.
func (s *TopupService) ListByUser(ctx context.Context, userID int64) ([]domain.Topup, error) {
	return s.store.ListByUser(ctx, userID)
}

// GetScreenshot returns the stored screenshot bytes for admin review.
func (s *TopupService) GetScreenshot(ctx context.Context, id int64) ([]byte, error) {
	img, err := s.store.Screenshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrTopupNotFound
	}
	return img, nil
}
