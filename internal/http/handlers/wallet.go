package handlers

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"

	"knowo_wallet/internal/service"
	"knowo_wallet/internal/verify"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// screenshots beyond this are rejected before OCR
const maxScreenshotBytes = 5 << 20

// SubmitTopup accepts a multipart top-up submission: claimed amount, method,
// UTR and the payment screenshot. The screenshot is OCRed and the claim
// cross-checked; discrepancies come back as warnings, not rejections.
func (h *Handler) SubmitTopup(c *gin.Context) {
	userID, err := strconv.ParseInt(c.PostForm("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user_id"})
		return
	}
	amount, err := decimal.NewFromString(c.PostForm("amount"))
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid amount"})
		return
	}
	utr := c.PostForm("utr_number")
	if utr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "utr_number is required"})
		return
	}
	method := c.PostForm("method")
	if method == "" {
		method = "UPI"
	}

	screenshot, ok := readScreenshot(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	topup, err := h.TopupService.SubmitTopup(ctx, userID, amount, method, utr, screenshot)
	if err != nil {
		var dup *service.DuplicateError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   dup.Error(),
				"status":  dup.Status,
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to submit top-up"})
		}
		return
	}

	claimedAmount, _ := amount.Float64()
	verification := verify.Verify(topup.OCRRaw, utr, claimedAmount)

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Top-up submitted for review",
		"topup_id":     topup.ID,
		"status":       topup.Status,
		"verification": verification,
	})
}

// SetTopupDue is the admin approval toggle. Marking due credits the user.
func (h *Handler) SetTopupDue(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}

	var req struct {
		Due bool `json:"due"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	if err := h.TopupService.SetDue(c.Request.Context(), id, req.Due); err != nil {
		if errors.Is(err, service.ErrTopupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "top-up not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update top-up"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Top-up updated", "due": req.Due})
}

// ListAllTopups returns every submission joined with the submitter (admin).
func (h *Handler) ListAllTopups(c *gin.Context) {
	records, err := h.TopupService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list top-ups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "topups": records})
}

// ListUserTopups returns one user's submission history.
func (h *Handler) ListUserTopups(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return
	}

	topups, err := h.TopupService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list top-ups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "topups": topups})
}

// GetTopupScreenshot serves the stored screenshot for admin review.
func (h *Handler) GetTopupScreenshot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}

	img, err := h.TopupService.GetScreenshot(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTopupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "screenshot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load screenshot"})
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(img), img)
}

// CheckUTR is the pre-flight duplicate lookup for the submission form.
func (h *Handler) CheckUTR(c *gin.Context) {
	existing, err := h.TopupRepo.GetByUTR(c.Request.Context(), c.Param("utr"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to check UTR"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true, "status": existing.Status})
}

// CheckImageDuplicate hashes an uploaded screenshot and reports whether this
// user already submitted it.
func (h *Handler) CheckImageDuplicate(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return
	}

	screenshot, ok := readScreenshot(c)
	if !ok {
		return
	}

	sum := md5.Sum(screenshot)
	existing, err := h.TopupRepo.GetByImageHash(c.Request.Context(), hex.EncodeToString(sum[:]), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to check image"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true, "status": existing.Status})
}

// GetBalance returns a user's current coin balance.
func (h *Handler) GetBalance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}

	user, err := h.UserRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load balance"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": user.Coin, "business_plan": user.BusinessPlan})
}

// readScreenshot pulls the "screenshot" multipart file, enforcing the size
// cap. Writes the error response itself on failure.
func readScreenshot(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "screenshot file is required"})
		return nil, false
	}
	if file.Size > maxScreenshotBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "screenshot too large"})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to read screenshot"})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxScreenshotBytes+1))
	if err != nil || len(data) > maxScreenshotBytes {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to read screenshot"})
		return nil, false
	}
	return data, true
}
