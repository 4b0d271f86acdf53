package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/planner/middleware"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/utils"
)

// TableController exposes upsert, queryAll and deleteById over the per-user planner tables.
type TableController struct {
	db *gorm.DB
}

// NewTableController creates a TableController.
func NewTableController(db *gorm.DB) *TableController {
	return &TableController{db: db}
}

type recordKeys struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// Upsert inserts a record, or overlays the body onto the caller's row with the same id.
func (t *TableController) Upsert(ctx *gin.Context) {
	tbl, userID, ok := t.resolve(ctx)
	if !ok {
		return
	}
	body, err := ctx.GetRawData()
	if err != nil || len(body) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	var keys recordKeys
	if err := json.Unmarshal(body, &keys); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	if keys.UserID != "" && keys.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "record belongs to another user")
		return
	}

	rec := tbl.New()
	exists := false
	if keys.ID != "" {
		err := t.db.Where("id = ?", keys.ID).First(rec).Error
		switch {
		case err == nil:
			if rec.GetUserID() != userID {
				utils.Error(ctx, http.StatusForbidden, 40302, "record belongs to another user")
				return
			}
			exists = true
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = tbl.New()
		default:
			utils.Sugar.Errorw("upsert lookup failed", "table", tbl.Name, "id", keys.ID, "error", err)
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load record")
			return
		}
	}

	if err := json.Unmarshal(body, rec); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	rec.SetID(keys.ID)
	rec.SetUserID(userID)
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, err.Error())
		return
	}

	if exists {
		if err = t.db.Save(rec).Error; err == nil {
			// reload so the response carries the stored created_at
			err = t.db.Where("id = ?", rec.GetID()).First(rec).Error
		}
	} else {
		err = t.db.Create(rec).Error
	}
	if err != nil {
		utils.Sugar.Errorw("upsert failed", "table", tbl.Name, "user_id", userID, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to save record")
		return
	}
	utils.InvalidateTable(userID, tbl.Name)
	utils.Success(ctx, []models.Record{rec})
}

// QueryAll returns every row the caller owns in the table, oldest first.
func (t *TableController) QueryAll(ctx *gin.Context) {
	tbl, userID, ok := t.resolve(ctx)
	if !ok {
		return
	}
	key := utils.TableCacheKey(userID, tbl.Name)
	if b, ok := utils.CacheGetBytes(key); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	rows := tbl.NewList()
	if err := t.db.Where("user_id = ?", userID).Order("created_at ASC").Find(rows).Error; err != nil {
		utils.Sugar.Errorw("query failed", "table", tbl.Name, "user_id", userID, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to query records")
		return
	}
	utils.CacheSetJSON(key, utils.JSONResponse{Code: 0, Message: "success", Data: rows}, 0)
	utils.Success(ctx, rows)
}

// DeleteByID removes the caller's row with the given id.
func (t *TableController) DeleteByID(ctx *gin.Context) {
	tbl, userID, ok := t.resolve(ctx)
	if !ok {
		return
	}
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "missing id")
		return
	}
	res := t.db.Where("id = ? AND user_id = ?", id, userID).Delete(tbl.New())
	if res.Error != nil {
		utils.Sugar.Errorw("delete failed", "table", tbl.Name, "id", id, "error", res.Error)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete record")
		return
	}
	if res.RowsAffected > 0 {
		utils.InvalidateTable(userID, tbl.Name)
	}
	utils.Success(ctx, gin.H{"deleted": res.RowsAffected})
}

// resolve checks the table name and that any user_id query parameter names the caller.
func (t *TableController) resolve(ctx *gin.Context) (models.Table, string, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return models.Table{}, "", false
	}
	tbl, err := models.Lookup(ctx.Param("table"))
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, err.Error())
		return models.Table{}, "", false
	}
	if q := ctx.Query("user_id"); q != "" && q != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "record belongs to another user")
		return models.Table{}, "", false
	}
	return tbl, userID, true
}
