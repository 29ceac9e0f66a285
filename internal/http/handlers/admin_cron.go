package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ManualCleanup triggers the quiz-history cleanup from the admin console.
func (h *Handler) ManualCleanup(c *gin.Context) {
	subject, ok := getAdminSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "admin identity missing"})
		return
	}

	result, err := h.Engine.RunCleanup(c.Request.Context(), subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Cleanup completed",
		"deleted":     result.Deleted,
		"cutoff_date": result.Cutoff,
	})
}

// ManualDailyCheck triggers the day-count decrement from the admin console.
func (h *Handler) ManualDailyCheck(c *gin.Context) {
	subject, ok := getAdminSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "admin identity missing"})
		return
	}

	result, err := h.Engine.RunDailyCheck(c.Request.Context(), subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Daily check completed",
		"updated":   result.Updated,
		"remaining": result.Remaining,
	})
}

// ManualMonthlyDeduction triggers the maintenance-fee run from the admin
// console and returns the per-user report.
func (h *Handler) ManualMonthlyDeduction(c *gin.Context) {
	subject, ok := getAdminSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "admin identity missing"})
		return
	}

	run, err := h.Engine.RunMonthlyDeduction(c.Request.Context(), subject)
	if err != nil && run == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp := gin.H{
		"success": err == nil,
		"message": "Monthly deduction completed",
		"summary": run.Summary(),
		"run":     run,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// RunAllCronJobs triggers every periodic job in sequence, best-effort.
func (h *Handler) RunAllCronJobs(c *gin.Context) {
	subject, ok := getAdminSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "admin identity missing"})
		return
	}

	result, err := h.Engine.RunAll(c.Request.Context(), subject)
	if err != nil && result == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp := gin.H{
		"success": err == nil,
		"message": "All cron jobs executed",
		"results": result,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// LastExecuted reports the most recent run timestamp per job.
func (h *Handler) LastExecuted(c *gin.Context) {
	timestamps, err := h.AuditRepo.LastExecuted(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load audit log"})
		return
	}

	formatted := make(map[string]string, len(timestamps))
	for action, ts := range timestamps {
		formatted[action] = ts.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "last_executed": formatted})
}

// RecentActions lists the latest audit entries (admin console history view).
func (h *Handler) RecentActions(c *gin.Context) {
	actions, err := h.AuditRepo.GetRecent(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "actions": actions})
}
