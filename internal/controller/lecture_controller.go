package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LectureController struct {
	LectureService *service.LectureService
}

func NewLectureController(lectureService *service.LectureService) *LectureController {
	return &LectureController{LectureService: lectureService}
}

// @Summary Upload a lecture recording
// @Description Stores the audio and queues it for transcription and note generation
// @Tags Lectures
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "Lecture title"
// @Param module formData string false "Course module"
// @Param topic formData string false "Topic"
// @Param audio formData file true "Recording"
// @Success 202 {object} util.Response{data=model.Lecture}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Router /lectures [post]
func (c *LectureController) Upload(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.LectureUploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	header, err := ctx.FormFile("audio")
	if err != nil {
		util.BadRequest(ctx, "audio file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	lecture, err := c.LectureService.Upload(ctx.Request.Context(), userID, req, file, header.Filename, header.Size)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Accepted(ctx, lecture)
}

// @Summary List lectures
// @Description Newest first, without transcripts and notes
// @Tags Lectures
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of lectures" default(50)
// @Success 200 {object} util.Response{data=[]model.Lecture}
// @Router /lectures [get]
func (c *LectureController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	lectures, err := c.LectureService.List(ctx.Request.Context(), userID, util.QueryLimit(ctx, 50, 100))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lectures)
}

// @Summary Lecture with transcript and notes
// @Tags Lectures
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lecture id"
// @Success 200 {object} util.Response{data=model.Lecture}
// @Failure 404 {object} util.Response
// @Router /lectures/{id} [get]
func (c *LectureController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	lecture, err := c.LectureService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

// @Summary Processing progress
// @Tags Lectures
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lecture id"
// @Success 200 {object} util.Response{data=service.LectureProgress}
// @Failure 404 {object} util.Response
// @Router /lectures/{id}/progress [get]
func (c *LectureController) Progress(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	progress, err := c.LectureService.Progress(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Retry a failed lecture
// @Description The lecture is reset to uploaded and queued; when the queue is full it waits for the periodic requeue
// @Tags Lectures
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lecture id"
// @Success 202 {object} util.Response{data=model.Lecture}
// @Failure 409 {object} util.Response
// @Router /lectures/{id}/retry [post]
func (c *LectureController) Retry(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	lecture, err := c.LectureService.Retry(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Accepted(ctx, lecture)
}
