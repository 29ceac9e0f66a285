package handlers

import (
	"net/http"
	"strconv"

	"knowo_wallet/internal/logger"
	"knowo_wallet/internal/verify"

	"github.com/gin-gonic/gin"
)

// VerifyUPI runs the screenshot heuristic without storing anything: OCR the
// uploaded image and cross-check the claimed amount and UTR.
func (h *Handler) VerifyUPI(c *gin.Context) {
	claimedAmount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid amount"})
		return
	}
	claimedUTR := c.PostForm("utr_number")

	screenshot, ok := readScreenshot(c)
	if !ok {
		return
	}

	text, err := h.Extractor.ExtractText(c.Request.Context(), screenshot)
	if err != nil {
		logger.Warn("ocr extraction failed", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "OCR extraction failed"})
		return
	}

	result := verify.Verify(text, claimedUTR, claimedAmount)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"verification": result,
	})
}

// TestImageExtraction is the diagnostic endpoint: OCR the image and return
// the line-scan extraction with its candidate sets so an operator can see
// why a screenshot failed.
func (h *Handler) TestImageExtraction(c *gin.Context) {
	screenshot, ok := readScreenshot(c)
	if !ok {
		return
	}

	text, err := h.Extractor.ExtractText(c.Request.Context(), screenshot)
	if err != nil {
		logger.Warn("ocr extraction failed", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "OCR extraction failed"})
		return
	}

	extraction := verify.ExtractFromLines(verify.Normalize(text))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"ocr_text":   text,
		"extraction": extraction,
	})
}
