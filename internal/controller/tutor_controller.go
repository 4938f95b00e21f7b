package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	TutorService *service.TutorService
}

func NewTutorController(tutorService *service.TutorService) *TutorController {
	return &TutorController{TutorService: tutorService}
}

// @Summary Start a tutor session
// @Tags AI Tutor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param session body service.CreateSessionRequest false "Session"
// @Success 201 {object} util.Response{data=model.AISession}
// @Router /ai/sessions [post]
func (c *TutorController) CreateSession(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateSessionRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	sess, err := c.TutorService.CreateSession(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sess)
}

// @Summary List tutor sessions
// @Tags AI Tutor
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of sessions" default(20)
// @Success 200 {object} util.Response{data=[]model.AISession}
// @Router /ai/sessions [get]
func (c *TutorController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	sessions, err := c.TutorService.ListSessions(ctx.Request.Context(), userID, util.QueryLimit(ctx, 20, 100))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// @Summary Session messages
// @Tags AI Tutor
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session id"
// @Param limit query int false "Number of messages" default(100)
// @Success 200 {object} util.Response{data=[]model.AIChat}
// @Failure 404 {object} util.Response
// @Router /ai/sessions/{id}/messages [get]
func (c *TutorController) GetMessages(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	msgs, err := c.TutorService.Messages(ctx.Request.Context(), userID, ctx.Param("id"), util.QueryLimit(ctx, 100, 100))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, msgs)
}

type askRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary Ask the tutor
// @Description Stores the question and the tutor's reply. Generation failures return an apology as the reply
// @Tags AI Tutor
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session id"
// @Param body body askRequest true "Question"
// @Success 200 {object} util.Response{data=service.TutorReply}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /ai/sessions/{id}/messages [post]
func (c *TutorController) Ask(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req askRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrEmptyMessage.Error())
		return
	}

	reply, err := c.TutorService.Ask(ctx.Request.Context(), userID, ctx.Param("id"), req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}

// @Summary End a tutor session
// @Tags AI Tutor
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Session id"
// @Success 200 {object} util.Response
// @Router /ai/sessions/{id}/end [post]
func (c *TutorController) EndSession(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.TutorService.EndSession(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
