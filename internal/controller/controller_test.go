package controller

import (
	"bytes"
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/model"
	"docdot_backend/internal/service"
	"docdot_backend/internal/timer"
	"docdot_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withUser stands in for the auth middleware.
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(util.ContextUserKey, &util.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}})
		}
		c.Next()
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{util.ErrInvalidAttempt, http.StatusBadRequest},
		{fmt.Errorf("%w: unknown difficulty", util.ErrInvalidAttempt), http.StatusBadRequest},
		{util.ErrInvalidWindow, http.StatusBadRequest},
		{util.ErrCategoryWindow, http.StatusBadRequest},
		{util.ErrInvalidDifficulty, http.StatusBadRequest},
		{util.ErrInvalidAudio, http.StatusBadRequest},
		{util.ErrSessionNotFound, http.StatusNotFound},
		{util.ErrLectureNotFound, http.StatusNotFound},
		{util.ErrStatsNotFound, http.StatusNotFound},
		{util.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{util.ErrLectureBusy, http.StatusConflict},
		{util.ErrQueueFull, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { respondError(c, tt.err) })

			w, env := do(t, r, http.MethodGet, "/", "")
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.want, env.Code)
		})
	}
}

func TestProtectedHandlersRequireUser(t *testing.T) {
	r := gin.New()
	quiz := NewQuizController(nil)
	timers := NewTimerController(nil)
	r.Use(withUser(""))
	r.POST("/quiz-attempts", quiz.SubmitAttempt)
	r.GET("/timer", timers.GetTimer)

	w, _ := do(t, r, http.MethodPost, "/quiz-attempts", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodGet, "/timer", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuizSubmit_BadBody(t *testing.T) {
	r := gin.New()
	r.Use(withUser("u1"))
	r.POST("/quiz-attempts", NewQuizController(nil).SubmitAttempt)

	w, env := do(t, r, http.MethodPost, "/quiz-attempts", `{"category":"anatomy"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.ErrInvalidAttempt.Error(), env.Message)
}

func TestTutorAsk_EmptyBody(t *testing.T) {
	r := gin.New()
	r.Use(withUser("u1"))
	r.POST("/ai/sessions/:id/messages", NewTutorController(nil).Ask)

	w, env := do(t, r, http.MethodPost, "/ai/sessions/abc/messages", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.ErrEmptyMessage.Error(), env.Message)
}

func TestTimerController(t *testing.T) {
	svc := service.NewTimerService(context.Background(), timer.NewMemoryStore(), nil, timer.DefaultConfig())
	t.Cleanup(func() { svc.Shutdown(context.Background()) })
	ctrl := NewTimerController(svc)

	r := gin.New()
	r.Use(withUser("u1"))
	r.GET("/timer", ctrl.GetTimer)
	r.POST("/timer/:action", ctrl.Action)
	r.DELETE("/timer", ctrl.Discard)

	w, env := do(t, r, http.MethodGet, "/timer", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.EqualValues(t, 25, st["minutes"])
	assert.Equal(t, false, st["isRunning"])

	w, env = do(t, r, http.MethodPost, "/timer/sync", `{"remainingSeconds":90}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.EqualValues(t, 1, st["minutes"])
	assert.EqualValues(t, 30, st["seconds"])

	w, env = do(t, r, http.MethodPost, "/timer/skip", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, true, st["isBreak"])
	assert.EqualValues(t, 2, st["session"])

	w, env = do(t, r, http.MethodDelete, "/timer", "")
	require.Equal(t, http.StatusOK, w.Code)
	st = nil
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, false, st["isBreak"])
	assert.EqualValues(t, 1, st["session"])

	w, _ = do(t, r, http.MethodPost, "/timer/rewind", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/timer/sync", `{"remainingSeconds":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type statsRows struct {
	users []model.UserStat
}

func (s statsRows) ListUserStats(context.Context) ([]model.UserStat, error) {
	return s.users, nil
}

func (s statsRows) ListCategoryStats(context.Context, string) ([]model.CategoryStat, error) {
	return nil, nil
}

func TestLeaderboardController(t *testing.T) {
	rows := statsRows{users: []model.UserStat{
		{UserID: "a", TotalXP: 100, CurrentLevel: 1},
		{UserID: "b", TotalXP: 300, CurrentLevel: 1},
	}}
	svc := service.NewLeaderboardService(rows, nil, nil, config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100})
	ctrl := NewLeaderboardController(svc)

	r := gin.New()
	r.GET("/leaderboard", ctrl.GetLeaderboard)
	r.GET("/user-rank", withUser("a"), ctrl.GetUserRank)
	r.GET("/user-rank-missing", withUser("z"), ctrl.GetUserRank)

	w, env := do(t, r, http.MethodGet, "/leaderboard?timeFrame=all-time&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0]["userId"])

	w, _ = do(t, r, http.MethodGet, "/leaderboard?timeFrame=yearly", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodGet, "/leaderboard?timeFrame=weekly&category=anatomy", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.ErrCategoryWindow.Error(), env.Message)

	w, env = do(t, r, http.MethodGet, "/user-rank", "")
	require.Equal(t, http.StatusOK, w.Code)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.EqualValues(t, 2, entry["rank"])

	w, env = do(t, r, http.MethodGet, "/user-rank-missing", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.EqualValues(t, 0, entry["rank"])
	assert.Equal(t, "z", entry["userId"])
}

func TestLectureUpload_RequiresFile(t *testing.T) {
	r := gin.New()
	r.Use(withUser("u1"))
	r.POST("/lectures", NewLectureController(nil).Upload)

	req := httptest.NewRequest(http.MethodPost, "/lectures", bytes.NewReader([]byte("title=Anatomy")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
