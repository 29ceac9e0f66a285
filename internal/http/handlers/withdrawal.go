package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"knowo_wallet/internal/domain"
	"knowo_wallet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type withdrawalRequest struct {
	UserID         int64           `json:"user_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Message        string          `json:"message"`
	Method         string          `json:"method" binding:"required"`
	UPIAddress     string          `json:"upi_address"`
	BankHolderName string          `json:"bank_holder_name"`
	BankName       string          `json:"bank_name"`
	IFSCCode       string          `json:"ifsc_code"`
	CryptoAddress  string          `json:"crypto_address"`
	CryptoNetwork  string          `json:"crypto_network"`
}

// CreateWithdrawal records a pending withdrawal request.
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	w := &domain.Withdrawal{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Message:        req.Message,
		Method:         req.Method,
		UPIAddress:     req.UPIAddress,
		BankHolderName: req.BankHolderName,
		BankName:       req.BankName,
		IFSCCode:       req.IFSCCode,
		CryptoAddress:  req.CryptoAddress,
		CryptoNetwork:  req.CryptoNetwork,
	}

	if err := h.WithdrawService.RequestWithdrawal(c.Request.Context(), w); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "insufficient balance"})
		case errors.Is(err, service.ErrPendingWithdrawal):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "a withdrawal request is already pending"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       "Withdrawal request submitted",
		"withdrawal_id": w.ID,
		"status":        w.Status,
	})
}

// UpdateWithdrawalStatus applies an admin decision to a pending request.
func (h *Handler) UpdateWithdrawalStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	err = h.WithdrawService.UpdateStatus(c.Request.Context(), id, domain.WithdrawalStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid status"})
		case errors.Is(err, service.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "withdrawal not found"})
		case errors.Is(err, service.ErrAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "withdrawal already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Withdrawal updated", "status": req.Status})
}

// ListAllWithdrawals returns every request joined with the requester (admin).
func (h *Handler) ListAllWithdrawals(c *gin.Context) {
	records, err := h.WithdrawService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawals": records})
}

// ListUserWithdrawals returns one user's withdrawal history.
func (h *Handler) ListUserWithdrawals(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return
	}

	withdrawals, err := h.WithdrawService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "withdrawals": withdrawals})
}

// CheckPendingWithdrawal reports whether the user already has a request in
// flight.
func (h *Handler) CheckPendingWithdrawal(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return
	}

	pending, err := h.WithdrawalRepo.HasPending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to check withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pending": pending > 0})
}
