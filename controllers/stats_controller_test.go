package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cppla/planner/config"
	"github.com/cppla/planner/middleware"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/utils"
)

func TestStatsLogsFailedCounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Get()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "stats.db")
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	// events and goals tables are missing
	if err := config.Migrate(db, &models.TaskList{}, &models.Habit{}); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Habit{Owned: models.Owned{ID: "h1", UserID: "u1"}, Name: "read", Streak: 2}).Error; err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	prev := utils.Sugar
	utils.Sugar = zap.New(core).Sugar()
	t.Cleanup(func() { utils.Sugar = prev })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stats?date=2026-10-18", nil)
	c.Set(middleware.ContextUserIDKey, "u1")
	NewStatsController(db).GetStats(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var env struct {
		Data Stats `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Habits != 1 || env.Data.BestStreak != 2 || env.Data.EventsToday != 0 || env.Data.GoalsActive != 0 {
		t.Fatalf("stats %+v", env.Data)
	}

	failed := map[string]bool{}
	for _, e := range logs.FilterMessage("stats query failed").All() {
		failed[e.ContextMap()["what"].(string)] = true
		if e.ContextMap()["user_id"] != "u1" {
			t.Fatalf("log fields %v", e.ContextMap())
		}
	}
	for _, what := range []string{"events", "active goals", "completed goals", "mean progress"} {
		if !failed[what] {
			t.Errorf("no warning for %s: %v", what, failed)
		}
	}
	if failed["habits"] || failed["tasks"] {
		t.Fatalf("healthy counts logged: %v", failed)
	}
}
