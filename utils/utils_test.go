package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cppla/planner/config"
)

func TestMain(m *testing.M) {
	config.Use(config.AppConfig{JWTSecret: "utils-test-secret", TokenTTLHours: 2})
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("claims %+v", claims)
	}
	if exp := TokenExpiry(token); time.Until(exp) < 50*time.Minute {
		t.Fatalf("expiry %v", exp)
	}
	if TokenTTL() != 2*time.Hour {
		t.Fatalf("ttl %v", TokenTTL())
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, _ := GenerateToken("user-1", "", -time.Minute)
	if _, err := ParseToken(expired); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, err := ParseToken("not.a.jwt"); err == nil {
		t.Fatal("garbage accepted")
	}
	if _, err := GenerateToken("", "", time.Hour); err == nil {
		t.Fatal("empty subject accepted")
	}
}

func TestPassword(t *testing.T) {
	if _, err := HashPassword("12345"); err == nil {
		t.Fatal("short password hashed")
	}
	if _, err := HashPassword(strings.Repeat("x", 73)); err == nil {
		t.Fatal("overlong password hashed")
	}
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "correct horse") || CheckPassword(hash, "wrong horse") {
		t.Fatal("bcrypt comparison")
	}
	if CheckPassword("", "anything") {
		t.Fatal("empty hash matched")
	}
}

func TestBlacklistMemoryFallback(t *testing.T) {
	if GetRedis() != nil {
		t.Skip("redis configured")
	}
	BlacklistToken("tok-live", time.Now().Add(time.Hour))
	BlacklistToken("tok-dead", time.Now().Add(-time.Second))
	if !IsTokenBlacklisted("tok-live") {
		t.Fatal("live token not revoked")
	}
	if IsTokenBlacklisted("tok-dead") || IsTokenBlacklisted("tok-unknown") {
		t.Fatal("unexpected revocation")
	}
}

func TestStateConsumedOnce(t *testing.T) {
	SaveState("state-1", time.Minute)
	if !ConsumeState("state-1") {
		t.Fatal("fresh state rejected")
	}
	if ConsumeState("state-1") {
		t.Fatal("state accepted twice")
	}
	if ConsumeState("") {
		t.Fatal("empty state accepted")
	}
}

func TestExpiringSetSweep(t *testing.T) {
	s := newExpiringSet()
	now := time.Now()
	s.add("old", now.Add(-time.Minute))
	s.add("new", now.Add(time.Minute))
	if n := s.sweep(now); n != 1 {
		t.Fatalf("swept %d", n)
	}
	if !s.has("new") || s.has("old") {
		t.Fatal("sweep removed the wrong entry")
	}
}

func TestRegistrationThrottlesFailOpenWithoutRedis(t *testing.T) {
	if GetRedis() != nil {
		t.Skip("redis configured")
	}
	for i := 0; i < 3; i++ {
		if !RegistrationCooldownTry("10.0.0.1") || !RegistrationDailyLimitCheck("10.0.0.1") {
			t.Fatal("throttle engaged without redis")
		}
		RegistrationDailyIncrement("10.0.0.1")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("Plänner", "noreply@example.com", "a@example.com", "Hi", "body")
	if !strings.Contains(msg, "=?UTF-8?b?") || !strings.Contains(msg, "<noreply@example.com>") {
		t.Fatalf("from header not encoded: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("body separator missing: %q", msg)
	}
	if err := SendConfirmationMail("a@example.com", "A"); err != ErrMailNotConfigured {
		t.Fatalf("expected ErrMailNotConfigured, got %v", err)
	}
}

func TestRecoveryWithZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Ginzap(zap.New(core), time.RFC3339, true), RecoveryWithZap(zap.New(core), true))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) {
		c.Set("user_id", "u-7")
		Success(c, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"code":50000`) {
		t.Fatalf("panic response %d %s", w.Code, w.Body.String())
	}
	if logs.FilterMessage("[Recovery from panic]").Len() != 1 {
		t.Fatalf("panic not logged: %v", logs.All())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	access := logs.FilterMessage("/ok").All()
	if len(access) != 1 {
		t.Fatalf("access log missing: %v", logs.All())
	}
	if f := access[0].ContextMap(); f["user_id"] != "u-7" || f["query"] != "x=1" || f["status"] != int64(200) {
		t.Fatalf("access fields %v", f)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zapcore.DebugLevel || ParseLevel("WARN") != zapcore.WarnLevel {
		t.Fatal("known levels")
	}
	if ParseLevel("") != zapcore.InfoLevel || ParseLevel("chatty") != zapcore.InfoLevel {
		t.Fatal("fallback level")
	}
}
