package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/planner/config"
	"github.com/cppla/planner/utils"
)

func TestMain(m *testing.M) {
	config.Use(config.AppConfig{JWTSecret: "middleware-test-secret", RateLimitPerMinute: 4})
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	r := protectedEngine()
	good, _ := utils.GenerateToken("u-42", "u@example.com", time.Hour)
	revoked, _ := utils.GenerateToken("u-43", "v@example.com", time.Hour)
	utils.BlacklistToken(revoked, time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, `"code":40101`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `"code":40102`},
		{"empty token", "Bearer   ", http.StatusUnauthorized, `"code":40103`},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized, `"code":40104`},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, `"code":40105`},
		{"valid", "Bearer " + good, http.StatusOK, "u-42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status %d, body %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.body) {
				t.Fatalf("body %s missing %s", w.Body.String(), tc.body)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// burst is RateLimitPerMinute/2
	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes %v", codes)
	}
	if n := SweepLimiters(time.Now().Add(limiterIdle + time.Second)); n == 0 {
		t.Fatal("idle limiter not swept")
	}
}
