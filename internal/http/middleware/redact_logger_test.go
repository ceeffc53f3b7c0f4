package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"email=a.b+tag@example.com", "email=[REDACTED:email]"},
		{"phone 555-123-4567", "phone [REDACTED:phone]"},
		{"ends=2025-03-04", "ends=2025-03-04"},
		{"code=123e4567-e89b-12d3-a456-426614174000", "code=123e4567-e89b-12d3-a456-426614174000"},
		{"filter=dua&sort=ending_soon", "filter=dua&sort=ending_soon"},
	}
	for _, tc := range tests {
		if got := redact(tc.in); got != tc.want {
			t.Fatalf("redact(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactingLogger_InfoAndRedactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.Use(func(c *gin.Context) { c.Set(CtxUserID, "u1"); c.Next() })
	r.GET("/chains/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567"
	req := httptest.NewRequest(http.MethodGet, "/chains/123e4567-e89b-12d3-a456-426614174000?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com phone 555-123-4567")
	req.Header.Set(requestIDHeader, "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/chains/:id"`,
		`"request_id":"rid-req"`,
		`"user_id":"u1"`,
		`[REDACTED:email]`,
		`[REDACTED:phone]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Custom":"email [REDACTED:email] phone [REDACTED:phone]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("missing %s in: %s", want, logs)
		}
	}
	if strings.Contains(logs, "secret") || strings.Contains(logs, "shhh") {
		t.Fatalf("credential leaked: %s", logs)
	}
}

func TestRedactingLogger_WarnAndErrorLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })
	r.GET("/ginerr", func(c *gin.Context) {
		_ = c.Error(errSentinel{})
		c.Status(http.StatusBadRequest)
	})

	for _, p := range []string{"/warn", "/error", "/ginerr", "/missing"} {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		req.Header.Set(requestIDHeader, "rid"+p)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d: %s", len(lines), buf.String())
	}
	checks := []struct{ level, rid string }{
		{"warn", "rid/warn"},
		{"error", "rid/error"},
		{"error", "rid/ginerr"},
		{"warn", "rid/missing"},
	}
	for i, ck := range checks {
		if !strings.Contains(lines[i], `"level":"`+ck.level+`"`) || !strings.Contains(lines[i], `"request_id":"`+ck.rid+`"`) {
			t.Fatalf("line %d: want level=%s rid=%s, got %s", i, ck.level, ck.rid, lines[i])
		}
	}
	if !strings.Contains(lines[2], `"errors":`) {
		t.Fatalf("gin errors not logged: %s", lines[2])
	}
	if !strings.Contains(lines[3], `"path":"/missing"`) {
		t.Fatalf("raw path fallback missing: %s", lines[3])
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }
