package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetAdminSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := getAdminSubject(c); ok {
		t.Fatal("subject reported before the middleware set one")
	}

	c.Set("admin_subject", "ops@example.com")
	subject, ok := getAdminSubject(c)
	if !ok || subject != "ops@example.com" {
		t.Fatalf("subject = %q, ok = %v", subject, ok)
	}

	c.Set("admin_subject", 42)
	if _, ok := getAdminSubject(c); ok {
		t.Fatal("non-string subject must not be reported")
	}
}
