package middleware

import (
	"context"
	"docdot_backend/internal/util"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type provisioner struct {
	calls map[string]string
	err   error
}

func (p *provisioner) Ensure(_ context.Context, id, email string) error {
	if p.err != nil {
		return p.err
	}
	if p.calls == nil {
		p.calls = make(map[string]string)
	}
	p.calls[id] = email
	return nil
}

func newAuthRouter(users UserProvisioner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret, users), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	users := &provisioner{}
	r := newAuthRouter(users)
	token, err := util.GenerateJWT("5f1c-user", "ada@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	w := get(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5f1c-user", w.Body.String())
	assert.Equal(t, "ada@example.com", users.calls["5f1c-user"])
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	r := newAuthRouter(nil)
	token, err := util.GenerateJWT("u1", "", testSecret, time.Hour)
	require.NoError(t, err)

	w := get(r, "/me?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, err := util.GenerateJWT("u1", "", testSecret, -time.Minute)
	require.NoError(t, err)
	forged, err := util.GenerateJWT("u1", "", "some-other-secret-of-sufficient-size", time.Hour)
	require.NoError(t, err)
	anonymous, err := util.GenerateJWT("", "", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + forged},
		{"no subject", "Bearer " + anonymous},
	}
	r := newAuthRouter(&provisioner{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_ProvisioningFailure(t *testing.T) {
	r := newAuthRouter(&provisioner{err: errors.New("db down")})
	token, err := util.GenerateJWT("u1", "", testSecret, time.Hour)
	require.NoError(t, err)

	w := get(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
