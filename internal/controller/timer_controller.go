package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TimerController struct {
	TimerService *service.TimerService
}

func NewTimerController(timerService *service.TimerService) *TimerController {
	return &TimerController{TimerService: timerService}
}

// @Summary Study timer state
// @Tags Timer
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=timer.State}
// @Router /timer [get]
func (c *TimerController) GetTimer(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	st, err := c.TimerService.Get(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, st)
}

type timerActionRequest struct {
	RemainingSeconds *int `json:"remainingSeconds"`
}

// @Summary Control the study timer
// @Description start, pause, skip, reset, or sync with the client's remaining seconds
// @Tags Timer
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param action path string true "start, pause, skip, reset or sync"
// @Param body body timerActionRequest false "Only read by sync"
// @Success 200 {object} util.Response{data=timer.State}
// @Failure 400 {object} util.Response
// @Router /timer/{action} [post]
func (c *TimerController) Action(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req timerActionRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	st, err := c.TimerService.Apply(ctx.Request.Context(), userID, ctx.Param("action"), req.RemainingSeconds)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, st)
}

// @Summary Start the timer cycle over
// @Description Drops the saved timer, so the session count starts from one again
// @Tags Timer
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=timer.State}
// @Router /timer [delete]
func (c *TimerController) Discard(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	st, err := c.TimerService.Discard(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, st)
}
