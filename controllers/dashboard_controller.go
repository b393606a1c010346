package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NzamaE/Footprint-Logger-Fullstack/middlewares"
	"github.com/NzamaE/Footprint-Logger-Fullstack/services"
)

// Trailing window for the dashboard view.
const dashboardWindowDays = 30

type DashboardController struct {
	analytics *services.AnalyticsService
}

func NewDashboardController(analytics *services.AnalyticsService) *DashboardController {
	return &DashboardController{analytics: analytics}
}

func (ctl *DashboardController) Dashboard(c *gin.Context) {
	summary, err := ctl.analytics.Dashboard(c.Request.Context(), middlewares.UserID(c), dashboardWindowDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (ctl *DashboardController) Streak(c *gin.Context) {
	streak, err := ctl.analytics.Streak(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, streak)
}

func (ctl *DashboardController) Leaderboard(c *gin.Context) {
	period := periodDays(c, 30)
	result, err := ctl.analytics.Leaderboard(c.Request.Context(), middlewares.UserID(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ctl *DashboardController) Stats(c *gin.Context) {
	period := periodDays(c, 30)
	stats, err := ctl.analytics.Stats(c.Request.Context(), middlewares.UserID(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func periodDays(c *gin.Context, fallback int) int {
	period, err := strconv.Atoi(c.DefaultQuery("period", strconv.Itoa(fallback)))
	if err != nil || period <= 0 {
		return fallback
	}
	return period
}
