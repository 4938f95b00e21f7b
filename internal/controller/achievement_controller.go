package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AchievementController serves badges and the notifications they raise.
type AchievementController struct {
	BadgeService *service.BadgeService
}

func NewAchievementController(badgeService *service.BadgeService) *AchievementController {
	return &AchievementController{BadgeService: badgeService}
}

// @Summary Caller's badges
// @Description Earned and available badges with progress. Unearned secret badges are hidden
// @Tags Badges
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.BadgeList}
// @Router /badges [get]
func (c *AchievementController) GetBadges(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	list, err := c.BadgeService.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary Evaluate badges
// @Description Unlocks every badge the caller's current stats qualify for
// @Tags Badges
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]badge.View}
// @Router /badges/check [post]
func (c *AchievementController) CheckBadges(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	unlocked, _, err := c.BadgeService.Check(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, service.Views(unlocked))
}

// @Summary Unread notifications
// @Tags Badges
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of notifications" default(50)
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /notifications [get]
func (c *AchievementController) GetNotifications(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	notifications, err := c.BadgeService.Notifications(ctx.Request.Context(), userID, util.QueryLimit(ctx, 50, 100))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

type markReadRequest struct {
	IDs []uint `json:"ids"`
}

// @Summary Mark notifications read
// @Description An empty id list marks every notification read
// @Tags Badges
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body markReadRequest false "Notification ids"
// @Success 200 {object} util.Response
// @Router /notifications/mark-read [post]
func (c *AchievementController) MarkRead(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req markReadRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	n, err := c.BadgeService.MarkRead(ctx.Request.Context(), userID, req.IDs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updated": n})
}
