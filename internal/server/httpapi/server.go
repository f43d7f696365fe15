// Package httpapi exposes the vault over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/cryptox"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/blobstore"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/dmitrijs2005/mediavault/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// UserService is what the auth handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	WhoAmI(ctx context.Context, userID string) (*models.User, error)
}

// VaultService is what the vault handlers need from services.VaultService.
type VaultService interface {
	Upload(ctx context.Context, req services.UploadRequest) (*models.VaultEntry, error)
	List(ctx context.Context, ownerID string) ([]*models.VaultEntry, error)
	Get(ctx context.Context, ownerID, entryID string) (*models.VaultEntry, error)
	Update(ctx context.Context, ownerID, entryID string, patch models.EntryPatch) (*models.VaultEntry, error)
	Delete(ctx context.Context, ownerID, entryID string) error
	Open(ctx context.Context, ownerID, storedName string) (*blobstore.Blob, *models.VaultEntry, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the HTTP surface.
type Options struct {
	Address            string
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	SessionSecret      string
	SecureCookies      bool
	TokenTTL           time.Duration
	MaxUploadSize      int64
}

type Server struct {
	opts   Options
	users  UserService
	vault  VaultService
	tokens TokenVerifier
	db     Pinger
	logger logging.Logger
	router *gin.Engine
}

func NewServer(opts Options, l logging.Logger, us UserService, vs VaultService, tokens TokenVerifier, db Pinger) *Server {
	s := &Server{
		opts:   opts,
		users:  us,
		vault:  vs,
		tokens: tokens,
		db:     db,
		logger: l.With("module", "http_server"),
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}))
	r.Use(requestLogger(s.logger))

	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if s.opts.RateLimitPerSecond > 0 {
		r.Use(newIPRateLimiter(s.opts.RateLimitPerSecond, s.opts.RateLimitBurst).Middleware())
	}

	authKey, encKey := cryptox.SessionKeys(s.opts.SessionSecret)
	store := cookie.NewStore(authKey, encKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(s.opts.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(common.SessionName, store))

	r.GET("/healthz", s.health)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.AuthRequired(), s.me)
	authGroup.GET("/session", s.AuthOptional(), s.session)

	vaultGroup := r.Group("/api/vault")
	vaultGroup.Use(s.AuthRequired())
	vaultGroup.GET("", s.listEntries)
	vaultGroup.POST("/upload", s.upload)
	vaultGroup.GET("/:id", s.getEntry)
	vaultGroup.PATCH("/:id", s.updateEntry)
	vaultGroup.DELETE("/:id", s.deleteEntry)

	r.GET("/uploads/:storedName", s.AuthRequired(), s.serveFile)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
