package controller

import (
	"docdot_backend/internal/service"
	"docdot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// @Summary Question bank categories
// @Tags Questions
// @Produce json
// @Success 200 {object} util.Response{data=service.CategorySummary}
// @Router /categories [get]
func (c *QuestionController) GetCategories(ctx *gin.Context) {
	summary, err := c.QuestionService.Categories(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary Quiz questions
// @Description Questions filtered by category and difficulty. With count, a random sample of that size capped by questions.max_count
// @Tags Questions
// @Produce json
// @Param category query string false "Category, or all" default(all)
// @Param difficulty query string false "easy, medium, hard or all" default(all)
// @Param count query int false "Random sample size; omit for every match"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Failure 400 {object} util.Response
// @Router /questions [get]
func (c *QuestionController) GetQuestions(ctx *gin.Context) {
	questions, err := c.QuestionService.Questions(
		ctx.Request.Context(),
		ctx.Query("category"),
		ctx.Query("difficulty"),
		queryInt(ctx, "count", 0),
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
