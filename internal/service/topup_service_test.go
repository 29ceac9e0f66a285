package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"

	"knowo_wallet/internal/domain"

	"github.com/shopspring/decimal"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	return f.text, f.err
}

type fakeTopupStore struct {
	users    map[int64]*domain.User
	topups   []*domain.Topup
	approved map[int64]bool
}

func newFakeTopupStore(userIDs ...int64) *fakeTopupStore {
	users := make(map[int64]*domain.User)
	for _, id := range userIDs {
		users[id] = &domain.User{ID: id}
	}
	return &fakeTopupStore{users: users, approved: make(map[int64]bool)}
}

func (f *fakeTopupStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return f.users[id], nil
}

func (f *fakeTopupStore) FindByUTR(ctx context.Context, utr string) (*domain.Topup, error) {
	for _, t := range f.topups {
		if t.UTRNumber == utr {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTopupStore) FindByImage(ctx context.Context, imgHash string, userID int64) (*domain.Topup, error) {
	for _, t := range f.topups {
		if t.ImgHash == imgHash && t.UserID == userID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTopupStore) Create(ctx context.Context, t *domain.Topup) error {
	t.ID = int64(len(f.topups) + 1)
	f.topups = append(f.topups, t)
	return nil
}

func (f *fakeTopupStore) Approve(ctx context.Context, id int64, due bool) error {
	f.approved[id] = due
	return nil
}

func (f *fakeTopupStore) Screenshot(ctx context.Context, id int64) ([]byte, error) {
	return nil, nil
}

func (f *fakeTopupStore) ListAll(ctx context.Context) ([]domain.TopupRecord, error) {
	return nil, nil
}

func (f *fakeTopupStore) ListByUser(ctx context.Context, userID int64) ([]domain.Topup, error) {
	return nil, nil
}

func TestSubmitTopupStoresHashAndOCR(t *testing.T) {
	store := newFakeTopupStore(7)
	svc := NewTopupServiceWithStore(store, &fakeExtractor{text: "Amount Paid 500 UTR 123456789012"})

	screenshot := []byte("fake image bytes")
	topup, err := svc.SubmitTopup(context.Background(), 7, decimal.NewFromInt(500), "UPI", "123456789012", screenshot)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	sum := md5.Sum(screenshot)
	if topup.ImgHash != hex.EncodeToString(sum[:]) {
		t.Fatalf("img hash = %q", topup.ImgHash)
	}
	if topup.OCRRaw != "Amount Paid 500 UTR 123456789012" {
		t.Fatalf("ocr raw = %q", topup.OCRRaw)
	}
	if topup.Status != domain.TopupStatusPending {
		t.Fatalf("status = %q; want pending", topup.Status)
	}
}

func TestSubmitTopupDuplicateUTRSurfacesStatus(t *testing.T) {
	store := newFakeTopupStore(7)
	store.topups = append(store.topups, &domain.Topup{
		ID:        1,
		UserID:    9,
		UTRNumber: "123456789012",
		ImgHash:   "other",
		Status:    domain.TopupStatusCompleted,
	})
	svc := NewTopupServiceWithStore(store, &fakeExtractor{text: "ok"})

	_, err := svc.SubmitTopup(context.Background(), 7, decimal.NewFromInt(500), "UPI", "123456789012", []byte("img"))
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Field != "UTR number" || dup.Status != domain.TopupStatusCompleted {
		t.Fatalf("duplicate = %+v", dup)
	}
}

func TestSubmitTopupDuplicateImagePerUser(t *testing.T) {
	screenshot := []byte("the same screenshot")
	sum := md5.Sum(screenshot)
	hash := hex.EncodeToString(sum[:])

	store := newFakeTopupStore(7, 8)
	store.topups = append(store.topups, &domain.Topup{
		ID:        1,
		UserID:    7,
		UTRNumber: "111122223333",
		ImgHash:   hash,
		Status:    domain.TopupStatusPending,
	})
	svc := NewTopupServiceWithStore(store, &fakeExtractor{text: "ok"})

	_, err := svc.SubmitTopup(context.Background(), 7, decimal.NewFromInt(500), "UPI", "999988887777", screenshot)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Field != "screenshot" || dup.Status != domain.TopupStatusPending {
		t.Fatalf("duplicate = %+v", dup)
	}

	// the image-hash check is per user; another user may submit the same image
	if _, err := svc.SubmitTopup(context.Background(), 8, decimal.NewFromInt(500), "UPI", "444455556666", screenshot); err != nil {
		t.Fatalf("other user's submission rejected: %v", err)
	}
}

func TestSubmitTopupOCRFailureDegrades(t *testing.T) {
	store := newFakeTopupStore(7)
	svc := NewTopupServiceWithStore(store, &fakeExtractor{err: errors.New("binary missing")})

	topup, err := svc.SubmitTopup(context.Background(), 7, decimal.NewFromInt(500), "UPI", "123456789012", []byte("img"))
	if err != nil {
		t.Fatalf("ocr failure must not reject the submission: %v", err)
	}
	if topup.OCRRaw != "OCR extraction failed" {
		t.Fatalf("ocr raw = %q", topup.OCRRaw)
	}
}

func TestSubmitTopupValidation(t *testing.T) {
	store := newFakeTopupStore(7)
	svc := NewTopupServiceWithStore(store, &fakeExtractor{text: "ok"})

	if _, err := svc.SubmitTopup(context.Background(), 7, decimal.Zero, "UPI", "123456789012", []byte("img")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := svc.SubmitTopup(context.Background(), 42, decimal.NewFromInt(10), "UPI", "123456789012", []byte("img")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}
}
