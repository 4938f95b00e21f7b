package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// @Summary Caller's overall stats
// @Tags Stats
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserStatsView}
// @Router /stats/user [get]
func (c *StatsController) GetUserStats(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := c.StatsService.UserStats(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary Caller's per-category stats
// @Tags Stats
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CategoryStat}
// @Router /stats/categories [get]
func (c *StatsController) GetCategoryStats(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := c.StatsService.CategoryStats(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary Caller's daily activity
// @Description One entry per day, oldest first; days without activity are zero
// @Tags Stats
// @Produce json
// @Security ApiKeyAuth
// @Param days query int false "Number of days" default(7)
// @Success 200 {object} util.Response{data=[]model.DailyStat}
// @Router /stats/daily [get]
func (c *StatsController) GetDailyStats(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := c.StatsService.DailyStats(ctx.Request.Context(), userID, queryInt(ctx, "days", 7))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
