package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	StatsService *service.StatsService
}

func NewQuizController(statsService *service.StatsService) *QuizController {
	return &QuizController{StatsService: statsService}
}

// @Summary Record a quiz answer
// @Description Stores one answered question, updates stats and XP and unlocks badges
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param attempt body service.SubmitAttemptRequest true "Answered question"
// @Success 201 {object} util.Response{data=service.SubmitAttemptResult}
// @Failure 400 {object} util.Response
// @Router /quiz-attempts [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidAttempt.Error())
		return
	}

	result, err := c.StatsService.SubmitAttempt(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary Recent quiz answers
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of attempts" default(10)
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /quiz-attempts [get]
func (c *QuizController) RecentAttempts(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	attempts, err := c.StatsService.RecentAttempts(ctx.Request.Context(), userID, util.QueryLimit(ctx, 10, 100))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
