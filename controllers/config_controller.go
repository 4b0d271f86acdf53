package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/planner/planner"
	"github.com/cppla/planner/utils"
)

// ConfigController serves the static planner configuration the front end renders with.
type ConfigController struct {
	now func() time.Time
}

func NewConfigController() *ConfigController { return &ConfigController{now: time.Now} }

// GetThemes lists the palettes of every theme.
func (c *ConfigController) GetThemes(ctx *gin.Context) {
	palettes := make([]planner.Palette, 0, len(planner.Themes))
	for _, t := range planner.Themes {
		palettes = append(palettes, planner.PaletteFor(t))
	}
	utils.Success(ctx, gin.H{
		"themes":     palettes,
		"categories": planner.Categories,
		"day_hours":  planner.DayHours(),
	})
}

// GetQuote returns the quote of the day.
func (c *ConfigController) GetQuote(ctx *gin.Context) {
	utils.Success(ctx, planner.QuoteFor(c.now()))
}
