package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addProbe registers a route echoing the authenticated user id.
func addProbe(env *testEnv, mw gin.HandlerFunc) {
	env.srv.router.GET("/probe", mw, func(c *gin.Context) {
		ctxID, _ := UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": userIDFrom(c), "ctx": ctxID})
	})
}

func cookieNamed(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestAuthRequired_TokenSources(t *testing.T) {
	env := newTestEnv(t)
	addProbe(env, env.srv.AuthRequired())

	aliceToken, aliceID := env.register(t, "alice")
	bobToken, bobID := env.register(t, "bob")

	loginRec := env.do(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "bob", "password": "secret123",
	}))
	require.Equal(t, http.StatusOK, loginRec.Code)
	session := cookieNamed(t, loginRec, common.SessionName)
	tokenCookie := cookieNamed(t, loginRec, common.TokenCookieName)
	assert.True(t, tokenCookie.HttpOnly)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		status  int
		want    string
	}{
		{
			name:    "bearer header",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+aliceToken) },
			status:  http.StatusOK,
			want:    aliceID,
		},
		{
			name: "header wins over cookie",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+aliceToken)
				r.AddCookie(&http.Cookie{Name: common.TokenCookieName, Value: bobToken})
			},
			status: http.StatusOK,
			want:   aliceID,
		},
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: common.TokenCookieName, Value: bobToken}) },
			status:  http.StatusOK,
			want:    bobID,
		},
		{
			name:    "session",
			prepare: func(r *http.Request) { r.AddCookie(session) },
			status:  http.StatusOK,
			want:    bobID,
		},
		{
			name:    "non bearer scheme falls through",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			status:  http.StatusUnauthorized,
			want:    "authentication required",
		},
		{
			name:    "garbage token",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
			status:  http.StatusUnauthorized,
			want:    "invalid authentication token",
		},
		{
			name:    "nothing",
			prepare: func(*http.Request) {},
			status:  http.StatusUnauthorized,
			want:    "authentication required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			tt.prepare(req)
			rec := env.do(req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				body := decode[map[string]string](t, rec)
				assert.Equal(t, tt.want, body["user"])
				assert.Equal(t, tt.want, body["ctx"])
				return
			}
			assert.Equal(t, tt.want, decode[errorBody](t, rec).Error)
		})
	}
}

func TestAuthOptional_PassesThrough(t *testing.T) {
	env := newTestEnv(t)
	addProbe(env, env.srv.AuthOptional())
	token, id := env.register(t, "alice")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/probe", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode[map[string]string](t, rec)["user"])

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/probe", nil), "garbage"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode[map[string]string](t, rec)["user"])

	rec = env.do(withBearer(httptest.NewRequest(http.MethodGet, "/probe", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[map[string]string](t, rec)["user"])
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := UserIDFromContext(withUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestRequestLogger_EchoesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(requestLogger(logging.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(common.RequestIDHeaderName, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(common.RequestIDHeaderName))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get(common.RequestIDHeaderName), 36)
}
