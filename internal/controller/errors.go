package controller

import (
	"docdot_backend/internal/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to the response envelope. Anything not listed
// is logged and reported as a 500.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidAttempt),
		errors.Is(err, util.ErrInvalidWindow),
		errors.Is(err, util.ErrCategoryWindow),
		errors.Is(err, util.ErrInvalidTimerEvent),
		errors.Is(err, util.ErrEmptyMessage),
		errors.Is(err, util.ErrInvalidLecture),
		errors.Is(err, util.ErrInvalidAudio),
		errors.Is(err, util.ErrInvalidDifficulty),
		errors.Is(err, util.ErrInvalidQuestionCount):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrStatsNotFound),
		errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrLectureNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrFileTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, util.ErrLectureBusy):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrQueueFull):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing or malformed.
func queryInt(ctx *gin.Context, key string, def int) int {
	if v := ctx.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// currentUser answers 401 and returns false when the request carries no user.
func currentUser(ctx *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return "", false
	}
	return claims.UserID(), true
}
