package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Username: u.UserName}
}

type authResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

func bindCredentials(c *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "username and password are required"})
		return req, false
	}
	if req.Username == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "username and password are required"})
		return req, false
	}
	return req, true
}

// rememberToken puts the token into the cookie and the session so browser
// clients do not have to handle it themselves.
func (s *Server) rememberToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.TokenCookieName, token, int(s.opts.TokenTTL/time.Second), "/", "", s.opts.SecureCookies, true)

	sess := sessions.Default(c)
	sess.Set(sessionTokenKey, token)
	if err := sess.Save(); err != nil {
		s.logger.Warn(c.Request.Context(), "session save failed", "error", err)
	}
}

func (s *Server) register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}
	u, token, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.rememberToken(c, token)
	c.JSON(http.StatusOK, authResponse{User: viewOf(u), Token: token})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.ErrInvalidCredentials)
		return
	}
	u, token, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.rememberToken(c, token)
	c.JSON(http.StatusOK, authResponse{User: viewOf(u), Token: token})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.TokenCookieName, "", -1, "/", "", s.opts.SecureCookies, true)

	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		s.logger.Warn(c.Request.Context(), "session save failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	u, err := s.users.WhoAmI(c.Request.Context(), userIDFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": viewOf(u)})
}

// session reports whether the caller is signed in. It never fails with 401.
func (s *Server) session(c *gin.Context) {
	userID := userIDFrom(c)
	if userID == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	u, err := s.users.WhoAmI(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusOK, gin.H{"authenticated": false})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": viewOf(u)})
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		ctx, cancel := contextWithTimeout(c, 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error(ctx, "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
