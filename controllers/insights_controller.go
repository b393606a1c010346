package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NzamaE/Footprint-Logger-Fullstack/middlewares"
	"github.com/NzamaE/Footprint-Logger-Fullstack/services"
)

type InsightsController struct {
	insights *services.InsightsService
}

func NewInsightsController(insights *services.InsightsService) *InsightsController {
	return &InsightsController{insights: insights}
}

func (ctl *InsightsController) WeeklyAnalysis(c *gin.Context) {
	analysis, err := ctl.insights.WeeklyAnalysis(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (ctl *InsightsController) Trends(c *gin.Context) {
	period := periodDays(c, 30)
	report, err := ctl.insights.Trends(c.Request.Context(), middlewares.UserID(c), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (ctl *InsightsController) Recommendations(c *gin.Context) {
	report, err := ctl.insights.Recommendations(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (ctl *InsightsController) SetWeeklyGoal(c *gin.Context) {
	var input services.SetGoalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := ctl.insights.SetWeeklyGoal(c.Request.Context(), middlewares.UserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Weekly goal set successfully",
		"goal":    goal,
	})
}

func (ctl *InsightsController) WeeklyGoalProgress(c *gin.Context) {
	status, err := ctl.insights.WeeklyGoalProgress(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
