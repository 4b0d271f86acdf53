package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/planner/middleware"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
	"github.com/cppla/planner/utils"
)

// StatsController summarizes a user's planner.
type StatsController struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db, now: time.Now}
}

// Stats is the per-user dashboard payload.
type Stats struct {
	Date           string `json:"date"`
	TasksToday     int    `json:"tasks_today"`
	TasksCompleted int    `json:"tasks_completed"`
	EventsToday    int64  `json:"events_today"`
	Habits         int64  `json:"habits"`
	BestStreak     int    `json:"best_streak"`
	GoalsActive    int64  `json:"goals_active"`
	GoalsCompleted int64  `json:"goals_completed"`
	MeanProgress   int    `json:"mean_progress"`
}

// GetStats returns today's counters for the caller. A failing count is logged and reported as zero.
func (s *StatsController) GetStats(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	today := planner.Today(s.now())
	if d := ctx.Query("date"); d != "" {
		if !planner.ValidDate(d) {
			utils.Error(ctx, http.StatusBadRequest, 40040, "date must be YYYY-MM-DD")
			return
		}
		today = d
	}
	st := Stats{Date: today}
	mine := s.db.Where("user_id = ?", userID).Session(&gorm.Session{})

	warn := func(what string, err error) {
		if err != nil {
			utils.Sugar.Warnw("stats query failed", "what", what, "user_id", userID, "error", err)
		}
	}

	var lists []models.TaskList
	err := mine.Where("date = ?", today).Find(&lists).Error
	warn("tasks", err)
	for _, l := range lists {
		for _, t := range l.Tasks {
			st.TasksToday++
			if t.Completed {
				st.TasksCompleted++
			}
		}
	}
	warn("events", mine.Model(&models.Event{}).Where("date = ?", today).Count(&st.EventsToday).Error)
	warn("habits", mine.Model(&models.Habit{}).Count(&st.Habits).Error)
	warn("best streak", mine.Model(&models.Habit{}).Select("COALESCE(MAX(streak),0)").Scan(&st.BestStreak).Error)
	warn("active goals", mine.Model(&models.Goal{}).Where("completed = ?", false).Count(&st.GoalsActive).Error)
	warn("completed goals", mine.Model(&models.Goal{}).Where("completed = ?", true).Count(&st.GoalsCompleted).Error)

	var mean float64
	err = mine.Model(&models.Goal{}).Select("COALESCE(AVG(progress),0)").Scan(&mean).Error
	warn("mean progress", err)
	if err == nil {
		st.MeanProgress = int(mean + 0.5)
	}
	utils.Success(ctx, st)
}
