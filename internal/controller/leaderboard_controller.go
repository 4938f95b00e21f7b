package controller

import (
	"docdot_backend/internal/ranking"
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// @Summary Leaderboard
// @Description Users ranked by XP in the time frame, then accuracy, then questions answered. Category boards rank lifetime category XP and only accept the all-time frame
// @Tags Leaderboard
// @Produce json
// @Security ApiKeyAuth
// @Param timeFrame query string false "weekly, monthly or all-time" default(all-time)
// @Param category query string false "Restrict to one category"
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {object} util.Response{data=[]ranking.Entry}
// @Failure 400 {object} util.Response
// @Router /leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	entries, err := c.LeaderboardService.Leaderboard(
		ctx.Request.Context(),
		ctx.Query("timeFrame"),
		ctx.Query("category"),
		util.QueryLimit(ctx, 0, 0),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary Caller's rank
// @Description Rank 0 means the caller has no ranked activity yet
// @Tags Leaderboard
// @Produce json
// @Security ApiKeyAuth
// @Param timeFrame query string false "weekly, monthly or all-time" default(all-time)
// @Param category query string false "Restrict to one category; requires the all-time frame"
// @Success 200 {object} util.Response{data=ranking.Entry}
// @Failure 400 {object} util.Response
// @Router /user-rank [get]
func (c *LeaderboardController) GetUserRank(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	entry, found, err := c.LeaderboardService.UserRank(ctx.Request.Context(), userID, ctx.Query("timeFrame"), ctx.Query("category"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !found {
		entry = ranking.Entry{UserID: userID, Category: ctx.Query("category")}
	}
	util.Success(ctx, entry)
}
