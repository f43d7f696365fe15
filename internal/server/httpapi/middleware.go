package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionTokenKey is where login stores the token in the session.
const sessionTokenKey = "token"

// extractToken looks at the Authorization header, then the token cookie,
// then the session. The first non-empty value wins.
func extractToken(c *gin.Context) string {
	if h := c.GetHeader(common.AuthorizationHeaderName); h != "" {
		if len(h) > len(common.BearerPrefix) && strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
			if t := strings.TrimSpace(h[len(common.BearerPrefix):]); t != "" {
				return t
			}
		}
	}
	if t, err := c.Cookie(common.TokenCookieName); err == nil && t != "" {
		return t
	}
	if t, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok && t != "" {
		return t
	}
	return ""
}

func (s *Server) authenticate(c *gin.Context) (string, error) {
	token := extractToken(c)
	if token == "" {
		return "", common.ErrorUnauthorized
	}
	return s.tokens.Verify(token)
}

func setUser(c *gin.Context, userID string) {
	c.Set(ginUserIDKey, userID)
	c.Request = c.Request.WithContext(withUserID(c.Request.Context(), userID))
}

// AuthRequired rejects requests without a valid token.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := s.authenticate(c)
		if err != nil {
			msg := "invalid authentication token"
			if errors.Is(err, common.ErrorUnauthorized) {
				msg = "authentication required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: msg})
			return
		}
		setUser(c, userID)
		c.Next()
	}
}

// AuthOptional attaches the user when a valid token is present and lets the
// request through either way.
func (s *Server) AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := s.authenticate(c); err == nil {
			setUser(c, userID)
		}
		c.Next()
	}
}

// requestLogger tags every request with an id and logs one line when it
// completes.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(common.RequestIDHeaderName)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, reqID)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error(c.Request.Context(), "request", args...)
		case status >= 400:
			log.Warn(c.Request.Context(), "request", args...)
		default:
			log.Info(c.Request.Context(), "request", args...)
		}
	}
}
