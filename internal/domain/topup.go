package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topup is a wallet top-up submission backed by a UPI payment screenshot.
// It is created pending and credited to the user's balance only after an
// admin flips the due flag.
type Topup struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Method      string          `db:"method" json:"method"`
	UTRNumber   string          `db:"utr_number" json:"utr_number"`
	Screenshot  []byte          `db:"screenshot" json:"-"`
	ImgHash     string          `db:"img_hash" json:"img_hash"`
	OCRRaw      string          `db:"ocr_raw" json:"ocr_raw,omitempty"`
	Status      TopupStatus     `db:"status" json:"status"`
	Due         bool            `db:"due" json:"due"`
	PaymentDate time.Time       `db:"payment_date" json:"payment_date"`
}

// TopupStatus represents top-up processing status
type TopupStatus string

const (
	TopupStatusPending   TopupStatus = "pending"
	TopupStatusCompleted TopupStatus = "completed"
	TopupStatusRejected  TopupStatus = "rejected"
)

// TopupRecord is a top-up row joined with the submitting user, returned to
// the admin console.
type TopupRecord struct {
	Topup
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
