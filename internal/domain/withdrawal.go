package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal is a request to pay out wallet balance over UPI, bank transfer
// or crypto. Completion debits the balance; rejection only notifies.
type Withdrawal struct {
	ID             int64            `db:"id" json:"id"`
	UserID         int64            `db:"user_id" json:"user_id"`
	Amount         decimal.Decimal  `db:"amount" json:"amount"`
	Message        string           `db:"message" json:"message,omitempty"`
	Method         string           `db:"method" json:"method"`
	UPIAddress     string           `db:"upi_address" json:"upi_address,omitempty"`
	BankHolderName string           `db:"bank_holder_name" json:"bank_holder_name,omitempty"`
	BankName       string           `db:"bank_name" json:"bank_name,omitempty"`
	IFSCCode       string           `db:"ifsc_code" json:"ifsc_code,omitempty"`
	CryptoAddress  string           `db:"crypto_address" json:"crypto_address,omitempty"`
	CryptoNetwork  string           `db:"crypto_network" json:"crypto_network,omitempty"`
	Status         WithdrawalStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// WithdrawalStatus represents withdrawal processing status
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// Valid reports whether s is one of the accepted status values.
func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusCompleted, WithdrawalStatusRejected:
		return true
	}
	return false
}

// WithdrawalRecord is a withdrawal row joined with the requesting user.
type WithdrawalRecord struct {
	Withdrawal
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
